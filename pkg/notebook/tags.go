package notebook

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const (
	tagBlock      = "block:"
	tagPrev       = "prev:"
	tagImports    = "imports"
	tagFunctions  = "functions"
	tagParameters = "pipeline-parameters"
	tagSkip       = "skip"
)

// blockNameRE is the DNS-label style rule block names follow.
var blockNameRE = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

var (
	// ErrBlockName reports a block or prev tag naming an invalid block.
	ErrBlockName = errors.New("block names must consist of lower case alphanumeric characters or '-', and must start and end with an alphanumeric character")

	// ErrTagConflict reports a cell whose tags contradict each other.
	ErrTagConflict = errors.New("cell tags conflict")
)

type roleKind int

const (
	roleNone roleKind = iota
	roleBlock
	rolePrelude
	roleParameters
	roleSkip
)

type cellTags struct {
	kind  roleKind
	block string
	prevs []string
}

func (ct *cellTags) assign(kind roleKind, tag string) error {
	if ct.kind != roleNone && ct.kind != kind {
		return errors.Wrapf(ErrTagConflict, "tag %q", tag)
	}
	ct.kind = kind

	return nil
}

// parseTags classifies one cell's tags. Tags from other tools pass through
// unrecognized and are ignored.
func parseTags(tags []string) (cellTags, error) {
	var ct cellTags
	for _, tag := range tags {
		switch {
		case strings.HasPrefix(tag, tagBlock):
			name := strings.TrimPrefix(tag, tagBlock)
			if !blockNameRE.MatchString(name) {
				return cellTags{}, errors.Wrapf(ErrBlockName, "tag %q", tag)
			}
			if ct.block != "" {
				return cellTags{}, errors.Wrapf(ErrTagConflict, "blocks %q and %q on one cell", ct.block, name)
			}
			if err := ct.assign(roleBlock, tag); err != nil {
				return cellTags{}, err
			}
			ct.block = name
		case strings.HasPrefix(tag, tagPrev):
			name := strings.TrimPrefix(tag, tagPrev)
			if !blockNameRE.MatchString(name) {
				return cellTags{}, errors.Wrapf(ErrBlockName, "tag %q", tag)
			}
			ct.prevs = append(ct.prevs, name)
		case tag == tagImports, tag == tagFunctions:
			if err := ct.assign(rolePrelude, tag); err != nil {
				return cellTags{}, err
			}
		case tag == tagParameters:
			if err := ct.assign(roleParameters, tag); err != nil {
				return cellTags{}, err
			}
		case tag == tagSkip:
			if err := ct.assign(roleSkip, tag); err != nil {
				return cellTags{}, err
			}
		}
	}

	if len(ct.prevs) > 0 && ct.kind != roleBlock {
		return cellTags{}, errors.Wrap(ErrTagConflict, "prev tags need a block tag on the same cell")
	}

	return ct, nil
}
