package object

import (
	"bytes"

	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/internal/readutil"
	"golang.org/x/xerrors"
)

// Tag is an annotated tag object. Lightweight tags are represented
// externally as a ref pointing directly at a commit; they never go
// through this type (see gitkit's Repository.Tags).
type Tag struct {
	raw *Object

	target     githash.Oid
	targetKind Kind
	name       string
	tagger     Signature
	message    string
}

// NewTagOptions carries the optional fields used to build an annotated tag.
type NewTagOptions struct {
	Tagger  Signature
	Message string
}

// NewTag builds a new annotated Tag object in memory, pointing at target.
func NewTag(hash githash.Hash, name string, target *Object, opts NewTagOptions) *Tag {
	t := &Tag{
		target:     target.ID(),
		targetKind: target.Kind(),
		name:       name,
		tagger:     opts.Tagger,
		message:    opts.Message,
	}
	t.raw = t.toObject(hash)
	return t
}

// ParseTag decodes an annotated tag object's payload: "object", "type",
// "tag", "tagger" header lines, a blank line, then the message.
func ParseTag(hash githash.Hash, o *Object) (*Tag, error) {
	if o.Kind() != KindTag {
		return nil, xerrors.Errorf("kind %s is not a tag: %w", o.Kind(), ErrInvalidObject)
	}
	t := &Tag{raw: o}
	data := o.Bytes()
	offset := 0
	for {
		line := readutil.ReadTo(data[offset:], '\n')
		if line == nil {
			return nil, xerrors.Errorf("unterminated header: %w", ErrInvalidObject)
		}
		offset += len(line) + 1

		if len(line) == 0 {
			t.message = string(data[offset:])
			break
		}
		if line[0] == ' ' {
			continue
		}

		kv := bytes.SplitN(line, []byte{' '}, 2)
		if len(kv) != 2 {
			continue
		}
		var err error
		switch string(kv[0]) {
		case "object":
			t.target, err = hash.FromHex(string(kv[1]))
			if err != nil {
				return nil, xerrors.Errorf("invalid target oid %q: %w", string(kv[1]), ErrInvalidObject)
			}
		case "type":
			t.targetKind, err = KindFromString(string(kv[1]))
			if err != nil {
				return nil, xerrors.Errorf("invalid target type %q: %w", string(kv[1]), ErrInvalidObject)
			}
		case "tag":
			t.name = string(kv[1])
		case "tagger":
			t.tagger, err = ParseSignature(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("invalid tagger: %w", err)
			}
		case "gpgsig":
			end := []byte("-----END PGP SIGNATURE-----")
			if i := bytes.Index(data[offset:], end); i >= 0 {
				offset += i + len(end) + 1
			}
		}
	}
	return t, nil
}

// ID returns the tag object's id.
func (t *Tag) ID() githash.Oid { return t.raw.ID() }

// Target returns the id of the object the tag points at.
func (t *Tag) Target() githash.Oid { return t.target }

// TargetKind returns the kind of the object the tag points at.
func (t *Tag) TargetKind() Kind { return t.targetKind }

// Name returns the tag's name.
func (t *Tag) Name() string { return t.name }

// Tagger returns the signature of whoever created the tag.
func (t *Tag) Tagger() Signature { return t.tagger }

// Message returns the tag's message.
func (t *Tag) Message() string { return t.message }

// ToObject returns the Tag's underlying raw Object.
func (t *Tag) ToObject() *Object { return t.raw }

func (t *Tag) toObject(hash githash.Hash) *Object {
	buf := new(bytes.Buffer)
	buf.WriteString("object ")
	buf.WriteString(t.target.String())
	buf.WriteByte('\n')
	buf.WriteString("type ")
	buf.WriteString(t.targetKind.String())
	buf.WriteByte('\n')
	buf.WriteString("tag ")
	buf.WriteString(t.name)
	buf.WriteByte('\n')
	buf.WriteString("tagger ")
	buf.WriteString(t.tagger.String())
	buf.WriteByte('\n')
	buf.WriteByte('\n')
	buf.WriteString(t.message)
	return New(hash, KindTag, buf.Bytes())
}
