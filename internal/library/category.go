package library

import (
	"sort"
	"strconv"
	"strings"

	gderr "github.com/gdasset/gdasset/internal/errors"
)

// Asset categories of the official library. Category ids are specific to the
// library instance; these are the official ones.
type category struct {
	id    int
	group string
	name  string
}

var categories = []category{
	{1, "Addons", "2D Tools"},
	{2, "Addons", "3D Tools"},
	{3, "Addons", "Shaders"},
	{4, "Addons", "Materials"},
	{5, "Addons", "Tools"},
	{6, "Addons", "Scripts"},
	{7, "Addons", "Misc"},
	{8, "Projects", "Templates"},
	{9, "Projects", "Projects"},
	{10, "Projects", "Demos"},
}

// FindCategoryID resolves a possibly shorthand category designator such as
// "Addons/Misc", "a/2d" or "proj" to the library's category id. Both parts
// are matched as case-insensitive prefixes; an ambiguous designator is an
// error.
func FindCategoryID(designator string) (int, error) {
	parts := strings.FieldsFunc(strings.ToLower(designator), func(r rune) bool {
		return r == '/' || r == '_' || r == ' '
	})
	var groupCand, nameCand string
	switch len(parts) {
	case 1:
		nameCand = parts[0]
	case 2:
		groupCand, nameCand = parts[0], parts[1]
	default:
		return 0, gderr.New(gderr.CategoryValidation, "cannot interpret %q as an asset category", designator)
	}

	var matches []category
	for _, c := range categories {
		if strings.HasPrefix(strings.ToLower(c.group), groupCand) &&
			strings.HasPrefix(strings.ToLower(c.name), nameCand) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return 0, gderr.New(gderr.CategoryValidation, "value %q could not be matched to an asset category", designator)
	case 1:
		return matches[0].id, nil
	}
	names := make([]string, len(matches))
	for i, c := range matches {
		names[i] = c.group + "/" + c.name
	}
	sort.Strings(names)
	return 0, gderr.New(gderr.CategoryValidation, "ambiguous category %q: could be any of %s",
		designator, strings.Join(names, ", "))
}

// CategoryName returns the "Group/Name" form for a category id, or "" when
// the id is unknown.
func CategoryName(id int) string {
	for _, c := range categories {
		if c.id == id {
			return c.group + "/" + c.name
		}
	}
	return ""
}

// ResolveCategory accepts either a numeric category id or a designator and
// returns the id.
func ResolveCategory(value string) (int, error) {
	if id, err := strconv.Atoi(value); err == nil {
		if CategoryName(id) == "" {
			return 0, gderr.New(gderr.CategoryValidation, "unknown category id %d", id)
		}
		return id, nil
	}
	return FindCategoryID(value)
}
