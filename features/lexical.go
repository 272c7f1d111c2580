package features

import (
	"strings"
	"unicode/utf8"
)

// Lexical computes a feature that needs nothing but the parsed URL. ok is
// false for network features.
func Lexical(f Feature, u ParsedURL) (v float64, ok bool) {
	switch f {
	case DirectoryLength:
		return length(u.Directory), true
	case LengthURL:
		return length(u.Raw), true
	case QtyDotDomain:
		return count(u.Host, "."), true
	case DomainLength:
		return length(u.Host), true
	case QtySlashURL:
		return count(u.Raw, "/"), true
	case QtyHyphenDirectory:
		return count(u.Directory, "-"), true
	case QtyVowelsDomain:
		return vowels(u.Host), true
	case FileLength:
		return length(u.File), true
	case QtySlashDirectory:
		return count(u.Directory, "/"), true
	case QtyDotURL:
		return count(u.Raw, "."), true
	case QtyDotFile:
		return count(u.File, "."), true
	}
	return 0, false
}

// length counts characters, not bytes.
func length(s string) float64 { return float64(utf8.RuneCountInString(s)) }

func count(s, sub string) float64 { return float64(strings.Count(s, sub)) }

func vowels(s string) float64 {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] | 0x20 {
		case 'a', 'e', 'i', 'o', 'u':
			n++
		}
	}
	return float64(n)
}
