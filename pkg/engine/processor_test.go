package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/mdpipe/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func process(t *testing.T, p *engine.Processor, source string, settings map[string]any) string {
	t.Helper()
	doc, err := p.Parse(context.Background(), []byte(source), settings)
	require.NoError(t, err)
	out, err := p.Stringify(context.Background(), doc, settings)
	require.NoError(t, err)
	return string(out)
}

func TestProcessor_Stringify(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		settings map[string]any
		want     string
	}{
		{"Heading And Emphasis", "# Hello\n\nSome *text* here.\n", nil, "# Hello\n\nSome *text* here.\n"},
		{"Default Bullet", "- a\n- b\n", nil, "* a\n* b\n"},
		{"Custom Bullet", "* a\n* b\n", map[string]any{"bullet": "-"}, "- a\n- b\n"},
		{"Incremented Ordered List", "1. a\n1. b\n", nil, "1. a\n2. b\n"},
		{"Repeated Ordered Marker", "1. a\n1. b\n", map[string]any{"incrementListMarker": false}, "1. a\n1. b\n"},
		{"Rule", "---\n", nil, "***\n"},
		{"Spaced Rule", "***\n", map[string]any{"rule": "-", "ruleSpaces": true}, "- - -\n"},
		{"Fenced Code", "```go\nfmt.Println()\n```\n", nil, "```go\nfmt.Println()\n```\n"},
		{"Tilde Fence", "```\ncode\n```\n", map[string]any{"fence": "~"}, "~~~\ncode\n~~~\n"},
		{"Setext Heading", "# Title\n", map[string]any{"setext": true}, "Title\n=====\n"},
		{"Closed ATX Heading", "## Sub\n", map[string]any{"closeAtx": true}, "## Sub ##\n"},
		{"Strong Marker", "**bold**\n", map[string]any{"strong": "_"}, "__bold__\n"},
		{"Blockquote", "> quoted\n", nil, "> quoted\n"},
		{"Link With Title", "[a](http://x.dev 'T')\n", nil, "[a](http://x.dev \"T\")\n"},
		{"Escaped Quote In Title", "[a](x \"say \\\"hi\\\"\")\n", nil, "[a](x \"say \\\"hi\\\"\")\n"},
		{"Single Quoted Title", "[a](x \"it's\")\n", map[string]any{"quote": "'"}, "[a](x 'it\\'s')\n"},
		{"Backslash In Title", "[a](x \"a\\b\")\n", nil, "[a](x \"a\\\\b\")\n"},
		{"Intraword Emphasis", "foo*bar*baz\n", map[string]any{"emphasis": "_"}, "foo*bar*baz\n"},
		{"Intraword Strong", "foo**bar**baz\n", map[string]any{"strong": "_"}, "foo**bar**baz\n"},
		{"Underscore Emphasis At Word Boundary", "*bar* baz\n", map[string]any{"emphasis": "_"}, "_bar_ baz\n"},
		{"Empty Document", "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := engine.NewProcessor()
			assert.Equal(t, tt.want, process(t, p, tt.source, tt.settings))
		})
	}
}

func TestProcessor_HTML(t *testing.T) {
	p := engine.NewProcessor()
	out := process(t, p, "# Hi\n", map[string]any{"html": true})
	assert.Equal(t, "<h1>Hi</h1>\n", out)
}

func TestProcessor_StringifyKeepsMeaning(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		settings map[string]any
	}{
		{"Link Title With Escaped Quotes", "[a](x \"say \\\"hi\\\"\")\n", nil},
		{"Image Title With Escaped Quote", "![a *b*](x.png \"t\\\"q\")\n", nil},
		{"Title With Other Quote Style", "[a](x 'say \"hi\"')\n", nil},
		{"Intraword Underscore Emphasis", "foo*bar*baz\n", map[string]any{"emphasis": "_"}},
		{"Intraword Underscore Strong", "foo**bar**baz\n", map[string]any{"strong": "_"}},
		{"Emphasis Before Word", "*a*b and c*d*\n", map[string]any{"emphasis": "_"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := engine.NewProcessor()
			out := process(t, p, tt.source, tt.settings)

			html := map[string]any{"html": true}
			assert.Equal(t, process(t, p, tt.source, html), process(t, p, out, html), out)
		})
	}
}

func TestProcessor_InvalidSettings(t *testing.T) {
	p := engine.NewProcessor()

	t.Run("Parse Rejects Unknown Bullet", func(t *testing.T) {
		_, err := p.Parse(context.Background(), []byte("a\n"), map[string]any{"bullet": "x"})
		assert.ErrorContains(t, err, "invalid settings")
	})

	t.Run("Stringify Rejects Short Rule", func(t *testing.T) {
		doc, err := p.Parse(context.Background(), []byte("a\n"), nil)
		require.NoError(t, err)
		_, err = p.Stringify(context.Background(), doc, map[string]any{"ruleRepetition": 2})
		assert.ErrorContains(t, err, "invalid settings")
	})
}

func TestProcessor_Use(t *testing.T) {
	var order []string
	record := func(name string) engine.Plugin {
		return engine.PluginFunc(name, func(*engine.Processor) error {
			order = append(order, name)
			return nil
		})
	}

	t.Run("Attaches In Order", func(t *testing.T) {
		order = nil
		p := engine.NewProcessor()
		require.NoError(t, p.Use(record("one"), record("two")))
		assert.Equal(t, []string{"one", "two"}, order)
		assert.Equal(t, []string{"one", "two"}, p.Plugins())
	})

	t.Run("Stops At First Failure", func(t *testing.T) {
		order = nil
		p := engine.NewProcessor()
		bad := engine.PluginFunc("bad", func(*engine.Processor) error { return errors.New("boom") })

		err := p.Use(record("one"), bad, record("three"))
		assert.ErrorContains(t, err, "attach bad: boom")
		assert.Equal(t, []string{"one"}, order)
		assert.Equal(t, []string{"one"}, p.Plugins())
	})

	t.Run("Rejects Nil Plugin", func(t *testing.T) {
		p := engine.NewProcessor()
		assert.Error(t, p.Use(nil))
	})
}

func TestProcessor_Filters(t *testing.T) {
	t.Run("Run In Registration Order", func(t *testing.T) {
		p := engine.NewProcessor()
		p.AddFilter("upper", func(_ context.Context, out []byte, _ engine.FilterEnv) ([]byte, error) {
			return append(out, 'A'), nil
		})
		p.AddFilter("lower", func(_ context.Context, out []byte, _ engine.FilterEnv) ([]byte, error) {
			return append(out, 'b'), nil
		})
		assert.Equal(t, "text\nAb", process(t, p, "text\n", nil))
	})

	t.Run("Receive Merged Settings And Path", func(t *testing.T) {
		p := engine.NewProcessor()
		p.SetDefaults(map[string]any{"bullet": "-", "custom": 1.0})

		var env engine.FilterEnv
		p.AddFilter("spy", func(_ context.Context, out []byte, e engine.FilterEnv) ([]byte, error) {
			env = e
			return out, nil
		})

		doc, err := p.Parse(context.Background(), []byte("* a\n"), nil)
		require.NoError(t, err)
		doc.Path = "readme.md"
		out, err := p.Stringify(context.Background(), doc, map[string]any{"custom": 2.0})
		require.NoError(t, err)

		assert.Equal(t, "- a\n", string(out))
		assert.Equal(t, "readme.md", env.File)
		assert.Equal(t, map[string]any{"bullet": "-", "custom": 2.0}, env.Settings)
	})

	t.Run("Errors Carry Filter Name", func(t *testing.T) {
		p := engine.NewProcessor()
		require.NoError(t, p.Use(engine.PluginFunc("broken", func(p *engine.Processor) error {
			p.AddFilter("", func(context.Context, []byte, engine.FilterEnv) ([]byte, error) {
				return nil, errors.New("exit status 2")
			})
			return nil
		})))

		doc, err := p.Parse(context.Background(), []byte("a\n"), nil)
		require.NoError(t, err)
		_, err = p.Stringify(context.Background(), doc, nil)
		assert.ErrorContains(t, err, "filter broken: exit status 2")
	})
}

func TestProcessor_Defaults(t *testing.T) {
	p := engine.NewProcessor()
	p.SetDefaults(map[string]any{"bullet": "-"})

	assert.Equal(t, "- a\n", process(t, p, "* a\n", nil))
	assert.Equal(t, "+ a\n", process(t, p, "* a\n", map[string]any{"bullet": "+"}))
}

func TestProcessor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.NewProcessor().Parse(ctx, []byte("a\n"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessor_Frontmatter(t *testing.T) {
	p := engine.NewProcessor()
	p.EnableFrontmatter()

	source := "---\ntitle: Hello\n---\n# Doc\n"
	doc, err := p.Parse(context.Background(), []byte(source), nil)
	require.NoError(t, err)
	require.True(t, doc.HasFrontmatter)
	assert.Equal(t, "Hello", doc.Frontmatter["title"])

	tree := doc.Tree()
	require.NotEmpty(t, tree.Children)
	assert.Equal(t, "frontmatter", tree.Children[0].Type)

	out, err := p.Stringify(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: Hello\n---\n\n# Doc\n", string(out))
}

func TestDocument_Tree(t *testing.T) {
	p := engine.NewProcessor()
	doc, err := p.Parse(context.Background(), []byte("# Hi\n"), nil)
	require.NoError(t, err)

	tree := doc.Tree()
	assert.Equal(t, "document", tree.Type)
	require.Len(t, tree.Children, 1)

	heading := tree.Children[0]
	assert.Equal(t, "heading", heading.Type)
	assert.Equal(t, 1, heading.Data["depth"])
	require.Len(t, heading.Children, 1)
	assert.Equal(t, "text", heading.Children[0].Type)
	assert.Equal(t, "Hi", heading.Children[0].Value)
}
