// Copyright 2024 The Tombi Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package validator

import (
	"github.com/tombi-toml/tombi/directive"
	"github.com/tombi-toml/tombi/syntax/ast"
	"github.com/tombi-toml/tombi/syntax/errors"
	"github.com/tombi-toml/tombi/syntax/token"
)

// applyValueDirectives resolves each diagnostic's materialized severity
// (spec.md §6.5: "Severity overrides from comment directives are applied
// as the diagnostic is materialized") and drops any diagnostic a
// `# tombi: lint.rules.<code>.disabled = true` directive suppresses
// (spec.md §8: "a directive attached to value V suppresses rule X
// diagnostics whose range is within V's range and no others").
//
// astRoot may be nil (a caller validating without the source AST in hand);
// in that case every diagnostic keeps its constructor-assigned severity.
func applyValueDirectives(diags errors.List, astRoot *ast.Root) errors.List {
	for _, d := range diags {
		// An error stays an error: strict mode raises unknown keys above
		// their default warning severity.
		if sev, ok := defaultSeverity[d.Code]; ok && d.Severity != errors.SeverityError {
			d.Severity = sev
		}
	}
	if astRoot == nil || len(diags) == 0 {
		return diags
	}
	scoped, _ := directive.CollectValues(astRoot)
	if len(scoped) == 0 {
		return diags
	}

	var out errors.List
	for _, d := range diags {
		if directivesSuppress(scoped, d) {
			continue
		}
		if sev, ok := directivesSeverityOverride(scoped, d); ok {
			d.Severity = sev
		}
		out.Add(d)
	}
	return out
}

func directivesSuppress(scoped []directive.Scoped, d *errors.Error) bool {
	for _, s := range scoped {
		if s.Scope.Contains(d.Range) && s.LintRuleDisabled[string(d.Code)] {
			return true
		}
	}
	return false
}

// directivesSeverityOverride returns the override from the narrowest scope
// containing d.Range that names d.Code, so a directive on an inner value
// wins over one on an enclosing table.
func directivesSeverityOverride(scoped []directive.Scoped, d *errors.Error) (errors.Severity, bool) {
	var (
		found   errors.Severity
		have    bool
		bestLen int
	)
	for _, s := range scoped {
		if !s.Scope.Contains(d.Range) {
			continue
		}
		sev, ok := s.SeverityOverrides[string(d.Code)]
		if !ok {
			continue
		}
		length := rangeSpan(s.Scope)
		if !have || length < bestLen {
			found, have, bestLen = sev, true, length
		}
	}
	return found, have
}

func rangeSpan(r token.Range) int {
	lines := r.End.Line - r.Start.Line
	if lines != 0 {
		return lines*1_000_000 + r.End.Column
	}
	return r.End.Column - r.Start.Column
}
