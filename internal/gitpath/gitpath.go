// Package gitpath contains the constants used to navigate the layout
// of a .git directory
package gitpath

// .git/ files and directories. Ref paths are kept in unix format since
// that's how they're stored on disk; callers convert to the host
// separator when touching the filesystem.
const (
	DotGitPath      = ".git"
	ConfigPath      = "config"
	DescriptionPath = "description"
	PackedRefsPath  = "packed-refs"
	HEADPath        = "HEAD"
	IndexPath       = "index"
	ObjectsPath     = "objects"
	ObjectsInfoPath = "objects/info"
	ObjectsPackPath = "objects/pack"
	RefsPath        = "refs"
	RefsTagsPath    = "refs/tags"
	RefsHeadsPath   = "refs/heads"
	RefsRemotesPath = "refs/remotes"
)
