package library

import "sort"

// DuplicateGroup is a set of files that collapse to the same canonical key.
type DuplicateGroup struct {
	Key   string
	Paths []string
}

// DuplicateGroups groups files by CanonicalKey and returns every group with
// more than one member, sorted by key. All members of a group are
// quarantine candidates: none of them can be trusted as the original.
func (l *Library) DuplicateGroups(files []string) []DuplicateGroup {
	byKey := make(map[string][]string)
	for _, file := range files {
		if l.IsQuarantined(file) {
			continue
		}
		key := CanonicalKey(file)
		byKey[key] = append(byKey[key], file)
	}

	groups := make([]DuplicateGroup, 0)
	for key, paths := range byKey {
		if len(paths) > 1 {
			groups = append(groups, DuplicateGroup{Key: key, Paths: paths})
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// CopyVariants returns the files outside exclude whose raw name carries a
// copy or numeric duplicate marker.
func (l *Library) CopyVariants(files []string, exclude map[string]struct{}) []string {
	var variants []string
	for _, file := range files {
		if _, skip := exclude[file]; skip {
			continue
		}
		if l.IsQuarantined(file) {
			continue
		}
		if IsCopyVariant(NameWithoutExt(file)) {
			variants = append(variants, file)
		}
	}
	return variants
}

// Original returns the single member whose raw name carries no copy marker.
// It reports false when no member, or more than one member, qualifies.
func (g DuplicateGroup) Original() (string, bool) {
	original := ""
	for _, p := range g.Paths {
		if IsCopyVariant(NameWithoutExt(p)) {
			continue
		}
		if original != "" {
			return "", false
		}
		original = p
	}
	return original, original != ""
}
