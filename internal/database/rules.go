package database

import (
	"strconv"
	"strings"

	"media-vault/internal/logging"
	"media-vault/internal/mediatypes"
)

// Rule fields and operators accepted by the compiler. Anything outside these
// sets compiles to the Unsatisfiable predicate, so a bogus stored rule can
// only shrink a smart playlist, never widen it.
const (
	RuleFieldMediaKind = "media_kind"
	RuleFieldYear      = "year"
	RuleFieldDuration  = "duration"
	RuleFieldTitle     = "title"
	RuleFieldFileName  = "file_name"
)

const (
	RuleOpEquals         = "equals"
	RuleOpNotEquals      = "notequals"
	RuleOpGreaterThan    = "gt"
	RuleOpLessThan       = "lt"
	RuleOpGreaterOrEqual = "gte"
	RuleOpLessOrEqual    = "lte"
	RuleOpContains       = "contains"
	RuleOpStartsWith     = "starts_with"
	RuleOpEndsWith       = "ends_with"
)

type predicateKind uint8

const (
	predUnsatisfiable predicateKind = iota
	predKindMatch
	predNumericCompare
	predTextMatch
)

// Predicate is a compiled rule: a fixed SQL fragment with at most one bound
// argument. The fragment is chosen from a closed set at compile time; rule
// values only ever travel as parameters.
type Predicate struct {
	kind   predicateKind
	clause string
	arg    interface{}
}

// Unsatisfiable reports whether the rule failed validation and matches
// nothing.
func (p Predicate) Unsatisfiable() bool {
	return p.kind == predUnsatisfiable
}

// SQL returns the WHERE fragment and its arguments.
func (p Predicate) SQL() (string, []interface{}) {
	if p.kind == predUnsatisfiable {
		return "1 = 0", nil
	}
	return p.clause, []interface{}{p.arg}
}

var numericRuleOps = map[string]string{
	RuleOpEquals:         "=",
	RuleOpGreaterThan:    ">",
	RuleOpLessThan:       "<",
	RuleOpGreaterOrEqual: ">=",
	RuleOpLessOrEqual:    "<=",
}

// CompileRule validates one stored rule into a Predicate. Unknown fields,
// operators invalid for a field, and unknown media kinds all produce the
// Unsatisfiable predicate. Numeric values that fail to parse compare as 0.
func CompileRule(r PlaylistRule) Predicate {
	switch r.Field {
	case RuleFieldMediaKind:
		if _, err := mediatypes.ParseMediaKind(r.Value); err != nil {
			return unsatisfiable(r, "unknown media kind")
		}
		switch r.Operator {
		case RuleOpEquals:
			return Predicate{kind: predKindMatch, clause: "media_type = ?", arg: r.Value}
		case RuleOpNotEquals:
			return Predicate{kind: predKindMatch, clause: "media_type <> ?", arg: r.Value}
		}
		return unsatisfiable(r, "operator not valid for media_kind")

	case RuleFieldYear, RuleFieldDuration:
		op, ok := numericRuleOps[r.Operator]
		if !ok {
			return unsatisfiable(r, "operator not valid for numeric field")
		}
		value, err := strconv.ParseInt(strings.TrimSpace(r.Value), 10, 64)
		if err != nil {
			value = 0
		}
		return Predicate{
			kind:   predNumericCompare,
			clause: r.Field + " " + op + " ?",
			arg:    value,
		}

	case RuleFieldTitle, RuleFieldFileName:
		column := r.Field
		switch r.Operator {
		case RuleOpEquals:
			return Predicate{kind: predTextMatch, clause: column + " = ?", arg: r.Value}
		case RuleOpContains:
			return Predicate{kind: predTextMatch, clause: column + " LIKE ?", arg: "%" + r.Value + "%"}
		case RuleOpStartsWith:
			return Predicate{kind: predTextMatch, clause: column + " LIKE ?", arg: r.Value + "%"}
		case RuleOpEndsWith:
			return Predicate{kind: predTextMatch, clause: column + " LIKE ?", arg: "%" + r.Value}
		}
		return unsatisfiable(r, "operator not valid for text field")
	}

	return unsatisfiable(r, "unknown field")
}

func unsatisfiable(r PlaylistRule, reason string) Predicate {
	logging.Warn("Rule %s %s %q matches nothing: %s", r.Field, r.Operator, r.Value, reason)
	return Predicate{kind: predUnsatisfiable}
}

// compileRuleQuery joins the compiled rules into a full media query. Rules
// are ANDed together; a playlist with no rules matches nothing rather than
// everything.
func compileRuleQuery(rules []PlaylistRule) (string, []interface{}) {
	conditions := []string{"is_deleted = 0"}
	var args []interface{}

	if len(rules) == 0 {
		conditions = append(conditions, "1 = 0")
	}
	for _, r := range rules {
		clause, clauseArgs := CompileRule(r).SQL()
		conditions = append(conditions, clause)
		args = append(args, clauseArgs...)
	}

	query := `SELECT ` + mediaColumns + ` FROM media_files WHERE ` +
		strings.Join(conditions, " AND ") +
		` ORDER BY title ASC, file_name ASC`
	return query, args
}
