package rulefile_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/fuzzy"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/performance"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/rulefile"
)

func TestParseExpr_Precedence(t *testing.T) {
	cases := map[string]string{
		"grade is high":                                  "grade is high",
		"grade is high and attendance is low":            "grade is high and attendance is low",
		"a is x or b is y and c is z":                    "a is x or (b is y and c is z)",
		"(a is x or b is y) and c is z":                  "(a is x or b is y) and c is z",
		"not a is x and b is y":                          "not a is x and b is y",
		"not (a is x and b is y)":                        "not (a is x and b is y)",
		"a is not x":                                     "not a is x",
		"A IS x AND b Is y OR NOT c is z":                "(A is x and b is y) or not c is z",
		"a is x and b is y and c is z":                   "a is x and b is y and c is z",
		"((grade is regular_struggling))":                "grade is regular_struggling",
		"grade is excellent and (attendance is high or not motivation is low)": "grade is excellent and (attendance is high or not motivation is low)",
	}
	for src, want := range cases {
		e, err := rulefile.ParseExpr(src)
		require.NoError(t, err, src)
		require.Equal(t, want, e.String(), src)
	}
}

func TestParseExpr_Flattens(t *testing.T) {
	e, err := rulefile.ParseExpr("a is x and b is y and c is z")
	require.NoError(t, err)
	require.Equal(t, fuzzy.OpAnd, e.Op())
	require.Len(t, fuzzy.Children(e), 3)
}

func TestParseExpr_Evaluates(t *testing.T) {
	e, err := rulefile.ParseExpr("a is x and (b is y or not c is z)")
	require.NoError(t, err)
	d := fuzzy.Degrees{fuzzy.T("a", "x"): 0.7, fuzzy.T("b", "y"): 0.2, fuzzy.T("c", "z"): 0.4}
	require.InDelta(t, 0.6, fuzzy.Eval(e, d), 1e-12)
}

func TestParseExpr_Errors(t *testing.T) {
	for _, src := range []string{
		"",
		"grade",
		"grade is",
		"grade excellent",
		"(grade is high",
		"grade is high)",
		"grade is high and",
		"grade is high attendance is low",
		"and is high",
		"grade is and",
		"grade is high & attendance is low",
		"not",
	} {
		_, err := rulefile.ParseExpr(src)
		require.ErrorIs(t, err, rulefile.ErrSyntax, "%q", src)
	}
}

func TestParseTerm(t *testing.T) {
	term, err := rulefile.ParseTerm("performance is good_overcoming")
	require.NoError(t, err)
	require.Equal(t, fuzzy.T("performance", "good_overcoming"), term)

	_, err = rulefile.ParseTerm("a is x and b is y")
	require.ErrorIs(t, err, rulefile.ErrSyntax)
}

func TestLoad_TOMLAndYAMLAgree(t *testing.T) {
	var systems []*fuzzy.System
	for _, path := range []string{"testdata/tiny.toml", "testdata/tiny.yaml"} {
		def, err := rulefile.Load(path)
		require.NoError(t, err, path)
		require.Equal(t, "tiny", def.Name)
		require.Len(t, def.Rules, 2)
		require.Equal(t, "strong", def.Rules[0].Label)
		require.Equal(t, fuzzy.T("performance", "fail"), def.Rules[1].Consequent)
		require.Equal(t, 0.5, def.Rules[1].Weight)

		sys, err := fuzzy.Build(def)
		require.NoError(t, err, path)
		require.Equal(t, 1.0, sys.Rules()[0].Weight)
		systems = append(systems, sys)
	}

	cases := []struct {
		grade, attendance, want float64
	}{
		{9, 90, 74.845},
		{2, 10, 22.341},
		{5, 50, 54.057},
	}
	for _, tc := range cases {
		in := map[string]float64{"grade": tc.grade, "attendance": tc.attendance}
		for _, sys := range systems {
			res, err := fuzzy.Evaluate(sys, in)
			require.NoError(t, err)
			require.InDelta(t, tc.want, res.Value, 1e-3)
		}
	}
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	_, err := rulefile.Load("testdata/unknown_key.toml")
	require.Error(t, err)

	_, err = rulefile.Parse([]byte("name: x\ncolour: blue\n"), rulefile.YAML)
	require.Error(t, err)
}

func TestLoad_DanglingTermFailsAtBuild(t *testing.T) {
	def, err := rulefile.Load("testdata/dangling.yaml")
	require.NoError(t, err)
	require.Equal(t, "dangling", def.Name, "name defaults to the file base name")

	_, err = fuzzy.Build(def)
	require.ErrorIs(t, err, fuzzy.ErrDanglingTerm)
}

func TestLoad_Errors(t *testing.T) {
	_, err := rulefile.Load("testdata/tiny.json")
	require.ErrorIs(t, err, rulefile.ErrUnknownFormat)

	_, err = rulefile.Load("testdata/missing.toml")
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := []byte(`
[output]
name = "y"
universe = { min = 0, max = 1, step = 0.1 }
terms = [ { name = "t", shape = "sigmoid", params = [1, 2] } ]
`)
	_, err = rulefile.Parse(bad, rulefile.TOML)
	require.ErrorIs(t, err, fuzzy.ErrBadMembership)

	syntax := []byte("rules:\n  - if: grade is\n    then: x\n")
	_, err = rulefile.Parse(syntax, rulefile.YAML)
	require.ErrorIs(t, err, rulefile.ErrSyntax)
}

func TestRoundTrip_BuiltInRuleBases(t *testing.T) {
	vectors := []performance.Inputs{
		{Grade: 7.5, Attendance: 85, Participation: 7, SocioEmotional: 6, Context: 5, Motivation: performance.MotivationHigh},
		{Grade: 4, Attendance: 60, Participation: 4, SocioEmotional: 4, Context: 4, Motivation: performance.MotivationMedium},
		{Grade: 6, Attendance: 40, Participation: 8, SocioEmotional: 2, Context: 2, Motivation: performance.MotivationLow},
		{Grade: 8, Attendance: 95, Participation: 8, SocioEmotional: 8, Context: 8, Motivation: performance.MotivationHigh},
	}
	for _, def := range []fuzzy.Definition{performance.StandardRuleBase(), performance.CompactRuleBase()} {
		want, err := fuzzy.Build(def)
		require.NoError(t, err)

		for _, f := range []rulefile.Format{rulefile.TOML, rulefile.YAML} {
			var buf bytes.Buffer
			require.NoError(t, rulefile.Encode(&buf, rulefile.FromDefinition(def), f))

			parsed, err := rulefile.Parse(buf.Bytes(), f)
			require.NoError(t, err, "%s/%s:\n%s", def.Name, f, buf.String())
			got, err := fuzzy.Build(parsed)
			require.NoError(t, err)
			require.Equal(t, len(want.Rules()), len(got.Rules()))

			for _, in := range vectors {
				a, errA := fuzzy.Evaluate(want, in.Crisp())
				b, errB := fuzzy.Evaluate(got, in.Crisp())
				require.Equal(t, errA == nil, errB == nil)
				if errA == nil {
					require.InDelta(t, a.Value, b.Value, 1e-9, "%s/%s", def.Name, f)
				}
			}
		}
	}
}

func TestResolve(t *testing.T) {
	def, err := rulefile.Resolve("")
	require.NoError(t, err)
	require.Equal(t, performance.RuleBaseStandard, def.Name)

	def, err = rulefile.Resolve("compact")
	require.NoError(t, err)
	require.Equal(t, performance.RuleBaseCompact, def.Name)

	path := filepath.Join(t.TempDir(), "mine.yml")
	data, err := os.ReadFile("testdata/tiny.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	sys, err := rulefile.Build(path)
	require.NoError(t, err)
	require.Equal(t, "tiny", sys.Name())

	_, err = rulefile.Resolve("nonsense")
	require.ErrorIs(t, err, performance.ErrUnknownRuleBase)
}
