package object

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/internal/readutil"
	"golang.org/x/xerrors"
)

// ErrInvalidSignature is returned when a "name <email> seconds tzoffset"
// signature line can't be parsed.
var ErrInvalidSignature = errors.New("invalid signature")

// Signature is the author or committer of a commit or tag.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// IsZero reports whether the signature holds the zero value.
func (s Signature) IsZero() bool {
	return s.Name == "" && s.Email == "" && s.When.IsZero()
}

// String formats the signature the way git writes it on the wire:
// "name <email> seconds ±HHMM".
func (s Signature) String() string {
	return s.Name + " <" + s.Email + "> " + strconv.FormatInt(s.When.Unix(), 10) + " " + s.When.Format("-0700")
}

// ParseSignature parses a "name <email> seconds ±HHMM" line, splitting
// from the right: the timezone, then the timestamp, then the email
// between the last '<' and its matching '>', with everything before
// that being the name.
func ParseSignature(b []byte) (Signature, error) {
	var sig Signature

	ltIdx := bytes.LastIndexByte(b, '<')
	gtIdx := bytes.LastIndexByte(b, '>')
	if ltIdx < 0 || gtIdx < 0 || gtIdx < ltIdx {
		return sig, xerrors.Errorf("missing <email>: %w", ErrInvalidSignature)
	}
	sig.Name = strings.TrimSpace(string(b[:ltIdx]))
	sig.Email = string(b[ltIdx+1 : gtIdx])

	rest := strings.TrimSpace(string(b[gtIdx+1:]))
	parts := strings.SplitN(rest, " ", 2)
	if len(parts) != 2 {
		return sig, xerrors.Errorf("missing timestamp/timezone: %w", ErrInvalidSignature)
	}

	seconds, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return sig, xerrors.Errorf("invalid timestamp %q: %w", parts[0], ErrInvalidSignature)
	}
	tz, err := time.Parse("-0700", parts[1])
	if err != nil {
		return sig, xerrors.Errorf("invalid timezone %q: %w", parts[1], ErrInvalidSignature)
	}
	sig.When = time.Unix(seconds, 0).In(tz.Location())
	return sig, nil
}

// Commit is a single point in the history DAG.
type Commit struct {
	raw *Object

	treeID    githash.Oid
	parentIDs []githash.Oid
	author    Signature
	committer Signature
	message   string
}

// NewCommitOptions carries the optional fields used to build a commit.
type NewCommitOptions struct {
	// Committer defaults to Author when zero.
	Committer Signature
	ParentIDs []githash.Oid
	Message   string
}

// NewCommit builds a new Commit object in memory. The caller is
// responsible for making sure treeID and ParentIDs refer to objects
// that already exist in the store.
func NewCommit(hash githash.Hash, treeID githash.Oid, author Signature, opts NewCommitOptions) *Commit {
	c := &Commit{
		treeID:    treeID,
		parentIDs: opts.ParentIDs,
		author:    author,
		committer: opts.Committer,
		message:   opts.Message,
	}
	if c.committer.IsZero() {
		c.committer = author
	}
	c.raw = c.toObject(hash)
	return c
}

// ParseCommit decodes a commit object's payload: a header section of
// "key value" lines (tree, parent*, author, committer — unknown
// headers and GPG-signature continuation lines are skipped) followed by
// a blank line and the verbatim commit message.
func ParseCommit(hash githash.Hash, o *Object) (*Commit, error) {
	if o.Kind() != KindCommit {
		return nil, xerrors.Errorf("kind %s is not a commit: %w", o.Kind(), ErrInvalidObject)
	}
	c := &Commit{raw: o}
	data := o.Bytes()
	offset := 0
	for {
		line := readutil.ReadTo(data[offset:], '\n')
		if line == nil {
			return nil, xerrors.Errorf("unterminated header: %w", ErrInvalidObject)
		}
		offset += len(line) + 1

		if len(line) == 0 {
			c.message = string(data[offset:])
			break
		}
		// GPG signature continuation lines start with a space; skip them.
		if line[0] == ' ' {
			continue
		}

		kv := bytes.SplitN(line, []byte{' '}, 2)
		if len(kv) != 2 {
			continue
		}
		var err error
		switch string(kv[0]) {
		case "tree":
			c.treeID, err = hash.FromHex(string(kv[1]))
			if err != nil {
				return nil, xerrors.Errorf("invalid tree oid %q: %w", string(kv[1]), ErrInvalidObject)
			}
		case "parent":
			pid, perr := hash.FromHex(string(kv[1]))
			if perr != nil {
				return nil, xerrors.Errorf("invalid parent oid %q: %w", string(kv[1]), ErrInvalidObject)
			}
			c.parentIDs = append(c.parentIDs, pid)
		case "author":
			c.author, err = ParseSignature(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("invalid author: %w", err)
			}
		case "committer":
			c.committer, err = ParseSignature(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("invalid committer: %w", err)
			}
		case "gpgsig":
			end := []byte("-----END PGP SIGNATURE-----")
			if i := bytes.Index(data[offset:], end); i >= 0 {
				offset += i + len(end) + 1
			}
		}
		// unknown headers are simply skipped
	}

	if c.author.IsZero() || c.treeID.IsZero() {
		return nil, xerrors.Errorf("missing tree or author: %w", ErrInvalidObject)
	}
	return c, nil
}

// ID returns the commit's id.
func (c *Commit) ID() githash.Oid { return c.raw.ID() }

// TreeID returns the id of the commit's root tree.
func (c *Commit) TreeID() githash.Oid { return c.treeID }

// ParentIDs returns the commit's parents, in order (first-parent first).
func (c *Commit) ParentIDs() []githash.Oid {
	out := make([]githash.Oid, len(c.parentIDs))
	copy(out, c.parentIDs)
	return out
}

// Author returns the commit's author signature.
func (c *Commit) Author() Signature { return c.author }

// Committer returns the commit's committer signature.
func (c *Commit) Committer() Signature { return c.committer }

// Message returns the commit's message, verbatim.
func (c *Commit) Message() string { return c.message }

// Summary returns the message's first line, used by log output.
func (c *Commit) Summary() string {
	if i := strings.IndexByte(c.message, '\n'); i >= 0 {
		return c.message[:i]
	}
	return c.message
}

// ToObject returns the Commit's underlying raw Object.
func (c *Commit) ToObject() *Object { return c.raw }

func (c *Commit) toObject(hash githash.Hash) *Object {
	buf := new(bytes.Buffer)
	buf.WriteString("tree ")
	buf.WriteString(c.treeID.String())
	buf.WriteByte('\n')
	for _, p := range c.parentIDs {
		buf.WriteString("parent ")
		buf.WriteString(p.String())
		buf.WriteByte('\n')
	}
	buf.WriteString("author ")
	buf.WriteString(c.author.String())
	buf.WriteByte('\n')
	buf.WriteString("committer ")
	buf.WriteString(c.committer.String())
	buf.WriteByte('\n')
	buf.WriteByte('\n')
	buf.WriteString(c.message)
	return New(hash, KindCommit, buf.Bytes())
}
