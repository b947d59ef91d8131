package manifest

import (
	"strings"

	"github.com/NVIDIA/wlancore/internal/config"
)

// fieldValidator implements field checks against the
// length limits carried in config.Manifest, ported byte-for-byte from
// the reference validator's check_path/check_name/check_url family.
type fieldValidator struct {
	cfg config.Manifest
}

func newFieldValidator(cfg config.Manifest) fieldValidator {
	return fieldValidator{cfg: cfg}
}

// checkPresenceAndLength reports Missing/Empty/TooLong and returns
// whether prop passed (nil pointer means the field was absent).
func checkPresenceAndLength(maxLen int, prop *string, decl, field string, errs *ErrorList) bool {
	switch {
	case prop == nil:
		errs.add(errMissingField(decl, field))
		return false
	case len(*prop) == 0:
		errs.add(errEmptyField(decl, field))
		return false
	case len(*prop) > maxLen:
		errs.add(errFieldTooLong(decl, field))
		return false
	default:
		return true
	}
}

// checkPath validates a path: 2-1024 chars, starts with '/', no "//",
// no trailing '/'.
func (v fieldValidator) checkPath(prop *string, decl, field string, errs *ErrorList) bool {
	start := len(*errs)
	checkPresenceAndLength(v.cfg.MaxPathLength, prop, decl, field, errs)
	if prop != nil {
		path := *prop
		switch {
		case len(path) < 2, !strings.HasPrefix(path, "/"), strings.Contains(path, "//"), strings.HasSuffix(path, "/"):
			errs.add(errInvalidField(decl, field))
			return false
		}
	}
	return start == len(*errs)
}

// checkRelativePath validates a relative path: 1-1024 chars, no
// leading '/', no "//", no trailing '/'.
func (v fieldValidator) checkRelativePath(prop *string, decl, field string, errs *ErrorList) bool {
	start := len(*errs)
	checkPresenceAndLength(v.cfg.MaxRelativePathLength, prop, decl, field, errs)
	if prop != nil {
		path := *prop
		switch {
		case len(path) == 0, strings.HasPrefix(path, "/"), strings.Contains(path, "//"), strings.HasSuffix(path, "/"):
			errs.add(errInvalidField(decl, field))
			return false
		}
	}
	return start == len(*errs)
}

// checkName validates a name: 1-100 chars, each byte in
// [A-Za-z0-9_\-.].
func (v fieldValidator) checkName(prop *string, decl, field string, errs *ErrorList) bool {
	start := len(*errs)
	checkPresenceAndLength(v.cfg.MaxNameLength, prop, decl, field, errs)
	if prop != nil {
		for i := 0; i < len(*prop); i++ {
			b := (*prop)[i]
			if !isNameByte(b) {
				errs.add(errInvalidField(decl, field))
				break
			}
		}
	}
	return start == len(*errs)
}

func isNameByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_', b == '-', b == '.':
		return true
	default:
		return false
	}
}

// checkNameOrPath dispatches on a leading '/' to support the legacy
// dialect open question says must keep being accepted.
func (v fieldValidator) checkNameOrPath(prop *string, decl, field string, errs *ErrorList) bool {
	start := len(*errs)
	if prop == nil {
		errs.add(errMissingField(decl, field))
		return false
	}
	if strings.HasPrefix(*prop, "/") {
		v.checkPath(prop, decl, field, errs)
	} else {
		v.checkName(prop, decl, field, errs)
	}
	return start == len(*errs)
}

// checkURL validates a full URL: 1-4096 chars; a scheme prefix of
// [0-9a-z+\-.]+ followed by "://" followed by at least one char.
func (v fieldValidator) checkURL(prop *string, decl, field string, errs *ErrorList) bool {
	start := len(*errs)
	checkPresenceAndLength(v.cfg.MaxURLLength, prop, decl, field, errs)
	if prop == nil {
		return start == len(*errs)
	}
	url := *prop
	firstChar := true
	for i := 0; i < len(url); i++ {
		c := url[i]
		switch {
		case isSchemeByte(c):
			firstChar = false
		case c == ':':
			if firstChar {
				errs.add(errInvalidField(decl, field))
				return false
			}
			rest := url[i+1:]
			if len(rest) >= 3 && rest[0] == '/' && rest[1] == '/' {
				return start == len(*errs)
			}
			errs.add(errInvalidField(decl, field))
			return false
		default:
			errs.add(errInvalidField(decl, field))
			return false
		}
	}
	errs.add(errInvalidField(decl, field))
	return false
}

func isSchemeByte(c byte) bool {
	switch {
	case c >= '0' && c <= '9', c >= 'a' && c <= 'z':
		return true
	case c == '+', c == '-', c == '.':
		return true
	default:
		return false
	}
}

// checkURLScheme validates a bare scheme (no "://" suffix): the same
// character set the scheme prefix of checkURL enforces, plus a
// lowercase-letter first character, classifying length
// failures as Empty/TooLong the same way checkPath does.
func (v fieldValidator) checkURLScheme(prop *string, decl, field string, errs *ErrorList) bool {
	if prop == nil {
		errs.add(errMissingField(decl, field))
		return false
	}
	scheme := *prop
	switch {
	case len(scheme) == 0:
		errs.add(errEmptyField(decl, field))
		return false
	case len(scheme) > v.cfg.MaxURLLength:
		errs.add(errFieldTooLong(decl, field))
		return false
	}
	// a bare scheme follows RFC 3986 more strictly than the scheme
	// prefix embedded in a full URL: it must start with a lowercase
	// letter, so "1http" is rejected here even though checkURL's
	// permissive in-URL form accepts it; "Http" fails both checks.
	if !isAlpha(scheme[0]) {
		errs.add(errInvalidField(decl, field))
		return false
	}
	for i := 1; i < len(scheme); i++ {
		if !isSchemeByte(scheme[i]) {
			errs.add(errInvalidField(decl, field))
			return false
		}
	}
	return true
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z'
}
