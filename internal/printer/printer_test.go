package printer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/parseobject"
	"bennypowers.dev/excss/internal/traits"
	"bennypowers.dev/excss/internal/variables"
)

func TestMain(m *testing.M) {
	log.SetOutput(nil)
	m.Run()
}

// render parses src, imports it into fresh registries and prints it
func render(t *testing.T, src string) (string, *variables.Environment) {
	t.Helper()
	po, err := parseobject.Parse(src)
	require.NoError(t, err)
	env := variables.NewEnvironment()
	reg := traits.NewRegistry()
	reg.Import(po)
	env.Import(po)
	return Print(po, env, reg), env
}

func TestPrint(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "flat declarations keep source order",
			src:  "a { color: red; margin: 0 }",
			want: "a {\n  color: red;\n  margin: 0 ;\n}\n",
		},
		{
			name: "several rulesets",
			src:  "a { x: 1; }\nb { y: 2; }",
			want: "a {\n  x: 1;\n}\nb {\n  y: 2;\n}\n",
		},
		{
			name: "variable substitution",
			src:  "@var c red;\na { color: $c; }",
			want: "a {\n  color: red;\n}\n",
		},
		{
			name: "longest variable name wins",
			src:  "@var foo 1;\n@var foobar 2;\na { x: $foobar; }",
			want: "a {\n  x: 2;\n}\n",
		},
		{
			name: "variable chain",
			src:  "@var a 1px;\n@var b $a;\np { width: $b; }",
			want: "p {\n  width: 1px;\n}\n",
		},
		{
			name: "circular variables substitute nothing",
			src:  "@var a $b;\n@var b $a;\np { x: $a; }",
			want: "p {\n  x: ;\n}\n",
		},
		{
			name: "nested selectors are combined across commas",
			src:  ".a, .b { & .c { color: red; } }",
			want: ".a, .b {\n}\n.a .c, .b .c {\n  color: red;\n}\n",
		},
		{
			name: "nested blocks print flat after their parent",
			src:  ".a { x: 1; &:hover { y: 2; & span { z: 3; } } w: 4; }",
			want: ".a {\n  x: 1;\n  w: 4;\n}\n.a:hover {\n  y: 2;\n}\n.a:hover span {\n  z: 3;\n}\n",
		},
		{
			name: "mixin expands at the call site",
			src:  "@trait t(x) { color: $x; }\n.a { @mixin t(blue); }",
			want: ".a {\n  color: blue;\n}\n",
		},
		{
			name: "mixin argument resolves in the caller's scope",
			src:  "@var c red;\n@trait t(x) { color: $x; }\n.a { @mixin t($c); }",
			want: ".a {\n  color: red;\n}\n",
		},
		{
			name: "mixin splices declarations in place",
			src:  "@trait t { b: 2; }\n.a { a: 1; @mixin t; c: 3; }",
			want: ".a {\n  a: 1;\n  b: 2;\n  c: 3;\n}\n",
		},
		{
			name: "mixin contributes nested blocks",
			src:  "@trait t { & span { x: y; } }\n.a { @mixin t; }",
			want: ".a {\n}\n.a span {\n  x: y;\n}\n",
		},
		{
			name: "mixin inside a nested block",
			src:  "@trait t(w) { width: $w; }\n.a { & .b { @mixin t(1px); } }",
			want: ".a {\n}\n.a .b {\n  width: 1px;\n}\n",
		},
		{
			name: "mixin calling a mixin",
			src:  "@trait inner(v) { x: $v; }\n@trait outer(v) { @mixin inner($v); }\n.a { @mixin outer(9); }",
			want: ".a {\n  x: 9;\n}\n",
		},
		{
			name: "missing params are left unbound",
			src:  "@trait t(x, y) { a: $x; b: $y; }\n.a { @mixin t(1); }",
			want: ".a {\n  a: 1;\n  b: $y;\n}\n",
		},
		{
			name: "extra args are dropped",
			src:  "@trait t(x) { a: $x; }\n.a { @mixin t(1, 2, 3); }",
			want: ".a {\n  a: 1;\n}\n",
		},
		{
			name: "unknown trait is skipped",
			src:  ".a { @mixin unknown; color: red; }",
			want: ".a {\n  color: red;\n}\n",
		},
		{
			name: "unknown trait with an empty argument list is skipped",
			src:  ".a { @mixin unknown(); color: red; }",
			want: ".a {\n  color: red;\n}\n",
		},
		{
			name: "empty argument list",
			src:  "@trait t { a: 1; }\n.a { @mixin t(); b: 2; }",
			want: ".a {\n  a: 1;\n  b: 2;\n}\n",
		},
		{
			name: "empty stylesheet",
			src:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := render(t, tt.src)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMixinParamsDoNotLeak(t *testing.T) {
	_, env := render(t, "@trait t(x) { color: $x; }\n.a { @mixin t(blue); }")
	_, ok := env.Get("x")
	assert.False(t, ok)
	assert.Equal(t, "$x", env.Substitute("$x"))
}

func TestFlattenUnknownTraitWithEmptyArgs(t *testing.T) {
	rules := parseobject.Rules{
		&parseobject.MixinCall{Ident: "unknown", Args: []string{}},
		&parseobject.Declaration{Text: "color: red"},
	}
	block := Flatten(".a", rules, variables.NewEnvironment(), traits.NewRegistry())
	assert.Equal(t, []string{"color: red"}, block.Declarations)
	assert.Empty(t, block.Nested)
}

type traitMap map[string]*parseobject.Trait

func (m traitMap) Get(ident string) (*parseobject.Trait, bool) {
	t, ok := m[ident]
	return t, ok
}

func TestFlattenNilTraitIsSkipped(t *testing.T) {
	rules := parseobject.Rules{
		&parseobject.MixinCall{Ident: "t", Args: []string{"1"}},
		&parseobject.Declaration{Text: "color: red"},
	}
	block := Flatten(".a", rules, variables.NewEnvironment(), traitMap{"t": nil})
	assert.Equal(t, []string{"color: red"}, block.Declarations)
}

func TestFlattenAllSkipsNilRulesets(t *testing.T) {
	po := parseobject.New()
	po.Rulesets = []*parseobject.Ruleset{nil, {Selector: "a", Rules: parseobject.Rules{&parseobject.Declaration{Text: "x: 1"}}}}
	blocks := FlattenAll(po, variables.NewEnvironment(), traitMap{})
	require.Len(t, blocks, 1)
	assert.Equal(t, "a", blocks[0].Selector)
}

func TestPrintIsIdempotentForFlatCSS(t *testing.T) {
	src := "a, b {\n  color: red;\n  margin: 0 auto;\n}\nc {\n  x: url(a.png);\n}\n"
	once, _ := render(t, src)
	assert.Equal(t, src, once)
	twice, _ := render(t, once)
	assert.Equal(t, once, twice)
}

func TestNestedSelector(t *testing.T) {
	tests := []struct {
		parent string
		child  string
		want   string
	}{
		{".a", "& .b", ".a .b"},
		{".a", ".b", ".a .b"},
		{".btn", "&.active", ".btn.active"},
		{".a", "&:hover, &:focus", ".a:hover, .a:focus"},
		{".a, .b", "& .c", ".a .c, .b .c"},
		{".a, .b", "c, &:hover", ".a c, .a:hover, .b c, .b:hover"},
		{".a", "& + &", ".a + .a"},
	}
	for _, tt := range tests {
		t.Run(tt.parent+" / "+tt.child, func(t *testing.T) {
			assert.Equal(t, tt.want, NestedSelector(tt.parent, tt.child))
		})
	}
}

func TestBlockString(t *testing.T) {
	b := &Block{
		Selector:     "a",
		Declarations: []string{"x: 1"},
		Nested:       []*Block{{Selector: "a b", Declarations: []string{"y: 2"}}},
	}
	assert.Equal(t, "a {\n  x: 1;\n}\na b {\n  y: 2;\n}\n", b.String())
}

func TestMinify(t *testing.T) {
	out, err := Minify("a {\n  margin: 0;\n}\nb {\n  padding: 0;\n}\n")
	require.NoError(t, err)
	assert.Equal(t, "a{margin:0}b{padding:0}", strings.TrimSpace(out))
}
