package planner

import (
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	bserrors "github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/synctypes"
)

// Planner scans one side of a transaction and produces a TransactionSummary.
type Planner struct {
	store        synctypes.ObjectStore
	logger       zerolog.Logger
	hashOverride synctypes.HashOverrideFunc
}

// New creates a planner over the given store. hashOverride may be nil; when
// set it substitutes the hash of every matched remote object.
func New(store synctypes.ObjectStore, logger zerolog.Logger, hashOverride synctypes.HashOverrideFunc) *Planner {
	return &Planner{
		store:        store,
		logger:       logger,
		hashOverride: hashOverride,
	}
}

// Filter applies include/exclude regular expressions to paths relative to
// the scan root.
type Filter struct {
	include *regexp.Regexp
	exclude *regexp.Regexp
}

// NewFilter compiles the given patterns; empty strings disable the
// respective side.
func NewFilter(includePattern, excludePattern string) (*Filter, error) {
	f := &Filter{}
	var err error
	if includePattern != "" {
		if f.include, err = regexp.Compile(includePattern); err != nil {
			return nil, bserrors.NewValidationError(fmt.Sprintf("invalid include pattern %q: %v", includePattern, err))
		}
	}
	if excludePattern != "" {
		if f.exclude, err = regexp.Compile(excludePattern); err != nil {
			return nil, bserrors.NewValidationError(fmt.Sprintf("invalid exclude pattern %q: %v", excludePattern, err))
		}
	}
	return f, nil
}

// Skip reports whether relPath is filtered out: a configured include pattern
// must match and a configured exclude pattern must not. When both match,
// exclude wins.
func (f *Filter) Skip(relPath string) bool {
	if f.include != nil && !matchesAtStart(f.include, relPath) {
		return true
	}
	if f.exclude != nil && matchesAtStart(f.exclude, relPath) {
		return true
	}
	return false
}

// matchesAtStart reports whether re matches at the beginning of s. Filter
// patterns are anchored: "sample.*txt" matches "sample_2.txt" but not
// "dir/sample.txt".
func matchesAtStart(re *regexp.Regexp, s string) bool {
	loc := re.FindStringIndex(s)
	return loc != nil && loc[0] == 0
}
