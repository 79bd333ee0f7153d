package sampling

import (
	"fmt"
	"strings"
)

// Method identifies a sampling design.
type Method string

const (
	MethodRandom     Method = "random"
	MethodSystematic Method = "systematic"
	MethodStratified Method = "stratified"
	MethodCluster1   Method = "cluster1"
	MethodCluster2   Method = "cluster2"
)

// Methods lists every supported design in display order.
var Methods = []Method{MethodRandom, MethodSystematic, MethodStratified, MethodCluster1, MethodCluster2}

var methodAliases = map[string]Method{
	"random":       MethodRandom,
	"srs":          MethodRandom,
	"aleatoire":    MethodRandom,
	"aléatoire":    MethodRandom,
	"systematic":   MethodSystematic,
	"systematique": MethodSystematic,
	"systématique": MethodSystematic,
	"stratified":   MethodStratified,
	"stratifie":    MethodStratified,
	"stratifié":    MethodStratified,
	"cluster":      MethodCluster1,
	"cluster1":     MethodCluster1,
	"grappes":      MethodCluster1,
	"cluster2":     MethodCluster2,
	"two-stage":    MethodCluster2,
	"grappes2":     MethodCluster2,
}

// ParseMethod resolves a user-supplied method name. Matching is case
// insensitive and accepts the French method labels.
func ParseMethod(s string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if m, ok := methodAliases[key]; ok {
		return m, nil
	}
	names := make([]string, len(Methods))
	for i, m := range Methods {
		names[i] = string(m)
	}
	return "", &InvalidParameterError{
		Field:  FieldMethod,
		Value:  s,
		Reason: fmt.Sprintf("unknown method (use %s)", strings.Join(names, ", ")),
	}
}

// Label returns a human readable name for the method.
func (m Method) Label() string {
	switch m {
	case MethodRandom:
		return "Simple random"
	case MethodSystematic:
		return "Systematic"
	case MethodStratified:
		return "Stratified (with replacement)"
	case MethodCluster1:
		return "One-stage cluster"
	case MethodCluster2:
		return "Two-stage cluster"
	default:
		return string(m)
	}
}

// ColumnField returns the name of the column parameter the method needs, or
// "" if it takes none.
func (m Method) ColumnField() string {
	switch m {
	case MethodStratified:
		return FieldStrataColumn
	case MethodCluster1, MethodCluster2:
		return FieldClusterColumn
	default:
		return ""
	}
}
