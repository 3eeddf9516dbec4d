package resolver

import (
	"strings"

	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/mapping"
	"github.com/matzehuels/apilink/pkg/symbol"
)

// ResolvePackage returns ref.Package when set, regardless of table contents.
// Otherwise it looks up the first segment of ref.Name in table and returns a
// MAPPING_NOT_FOUND error when there is no entry.
func ResolvePackage(ref symbol.Ref, table *mapping.Table) (string, error) {
	if ref.HasPackage() {
		return ref.Package, nil
	}
	root := ref.Root()
	pkg, ok := table.Lookup(root)
	if !ok {
		return "", errors.New(errors.ErrCodeMappingNotFound,
			"no package mapping for %q (symbol %q); pass an explicit package", root, ref.Name)
	}
	return pkg, nil
}

// ResolveAnchor replaces every "." in ref.Name with "-".
func ResolveAnchor(ref symbol.Ref) string {
	return strings.ReplaceAll(ref.Name, symbol.Separator, "-")
}

// ResolveDisplayText returns ref.DisplayName when set, otherwise ref.Name.
func ResolveDisplayText(ref symbol.Ref) string {
	if ref.HasDisplayName() {
		return ref.DisplayName
	}
	return ref.Name
}

// ResolveURL resolves ref against table with DefaultOptions.
func ResolveURL(ref symbol.Ref, table *mapping.Table) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}
	pkg, err := ResolvePackage(ref, table)
	if err != nil {
		return "", err
	}
	return composeURL(DefaultBasePath, PackagePath(pkg, DefaultRootPrefix), ResolveAnchor(ref)), nil
}

// PackagePath converts a dotted package into its URL path: a leading
// rootPrefix is removed once, then dots become slashes.
func PackagePath(pkg, rootPrefix string) string {
	if rootPrefix != "" {
		pkg = strings.TrimPrefix(pkg, rootPrefix)
	}
	return strings.ReplaceAll(pkg, symbol.Separator, "/")
}

// IsMissingMapping reports whether err is a MAPPING_NOT_FOUND error.
func IsMissingMapping(err error) bool {
	return errors.Is(err, errors.ErrCodeMappingNotFound)
}

func composeURL(basePath, pkgPath, anchor string) string {
	return basePath + pkgPath + "/#" + anchor
}
