// Package filters implements the typed attribute-value filters: each
// produces a canonical string or the Invalid sentinel.
package filters

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/aledsdavies/tagforge/internal/logx"
	"github.com/aledsdavies/tagforge/internal/schema"
)

// Invalid is the sentinel canonical value a Filter returns to signal the
// raw value did not pass.
const Invalid = "\x00invalid\x00"

var (
	reIdentifier = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	reSimpleText = regexp.MustCompile(`^[A-Za-z0-9\-+.,_ ]+$`)
	reColorHex   = regexp.MustCompile(`^#[0-9a-fA-F]{3,6}$`)
	reColorName  = regexp.MustCompile(`^[A-Za-z]+$`)
	reReplaceRef = regexp.MustCompile(`\\\$(\d+)|\$(\d+)|\\\\`)
)

// Run applies the typed filter for attrType to raw, honoring a per-type
// callback override, the type's FilterConfig for url, and the Attr's own
// settings for range and regexp. It returns the canonical value and
// whether raw was valid. log/ctx receive any warning produced along the
// way (e.g. range clamping) and the url filter's scheme/host errors; for
// every other invalid value, error-severity logging is left to the
// caller, since that message differs by call site.
func Run(attrType schema.AttrType, raw string, attr *schema.Attr, cfg *schema.FilterConfig, log *logx.Log, ctx logx.Context) (string, bool) {
	if cfg != nil && cfg.Callback != nil {
		return cfg.Callback(raw)
	}
	if attr != nil && attr.Callback != nil {
		return attr.Callback(raw)
	}

	switch attrType {
	case schema.TypeURL:
		return filterURL(raw, cfg, log, ctx)
	case schema.TypeIdentifier, schema.TypeID:
		if reIdentifier.MatchString(raw) {
			return raw, true
		}
		return Invalid, false
	case schema.TypeSimpleText:
		if reSimpleText.MatchString(raw) {
			return raw, true
		}
		return Invalid, false
	case schema.TypeText:
		return raw, true
	case schema.TypeEmail:
		if _, err := mail.ParseAddress(raw); err != nil {
			return Invalid, false
		}
		return raw, true
	case schema.TypeInt, schema.TypeInteger:
		if n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			return strconv.FormatInt(n, 10), true
		}
		return Invalid, false
	case schema.TypeFloat:
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64), true
		}
		return Invalid, false
	case schema.TypeNumber, schema.TypeUint:
		if n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64); err == nil {
			return strconv.FormatUint(n, 10), true
		}
		return Invalid, false
	case schema.TypeRange:
		return filterRange(raw, attr, log, ctx)
	case schema.TypeColor:
		if reColorHex.MatchString(raw) {
			return strings.ToLower(raw), true
		}
		if reColorName.MatchString(raw) {
			return strings.ToLower(raw), true
		}
		return Invalid, false
	case schema.TypeRegexp:
		return filterRegexp(raw, attr)
	default:
		log.Debugf(ctx, "Unknown filter", "type", string(attrType))
		return Invalid, false
	}
}

func filterURL(raw string, cfg *schema.FilterConfig, log *logx.Log, ctx logx.Context) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return Invalid, false
	}

	if cfg != nil && cfg.AllowedSchemes != "" {
		re, err := regexp.Compile(cfg.AllowedSchemes)
		if err == nil && !re.MatchString(u.Scheme) {
			log.Errorf(ctx, fmt.Sprintf("URL scheme %s is not allowed", u.Scheme))
			return Invalid, false
		}
	}
	if cfg != nil && cfg.DisallowedHosts != "" {
		re, err := regexp.Compile(cfg.DisallowedHosts)
		if err == nil && re.MatchString(u.Host) {
			log.Errorf(ctx, fmt.Sprintf("URL host %s is disallowed", u.Host))
			return Invalid, false
		}
	}

	canonical := strings.NewReplacer(`'`, "%27", `"`, "%22").Replace(raw)
	return canonical, true
}

func filterRange(raw string, attr *schema.Attr, log *logx.Log, ctx logx.Context) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Invalid, false
	}
	if attr == nil {
		return strconv.Itoa(n), true
	}
	if n < attr.Min {
		log.Warnf(ctx, fmt.Sprintf("Minimum range value adjusted to %d", attr.Min))
		n = attr.Min
	} else if n > attr.Max {
		log.Warnf(ctx, fmt.Sprintf("Maximum range value adjusted to %d", attr.Max))
		n = attr.Max
	}
	return strconv.Itoa(n), true
}

func filterRegexp(raw string, attr *schema.Attr) (string, bool) {
	if attr == nil || attr.Regexp == "" {
		return Invalid, false
	}
	re, err := regexp.Compile(attr.Regexp)
	if err != nil {
		return Invalid, false
	}
	m := re.FindStringSubmatchIndex(raw)
	if m == nil {
		return Invalid, false
	}
	if attr.Replace == "" {
		return raw, true
	}

	groups := re.FindStringSubmatch(raw)
	out := reReplaceRef.ReplaceAllStringFunc(attr.Replace, func(tok string) string {
		switch {
		case tok == `\\`:
			return `\`
		case strings.HasPrefix(tok, `\$`):
			return tok[1:]
		default:
			n, _ := strconv.Atoi(tok[1:])
			if n >= 0 && n < len(groups) {
				return groups[n]
			}
			return ""
		}
	})
	return out, true
}
