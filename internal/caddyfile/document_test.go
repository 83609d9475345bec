package caddyfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksyq12/caddyman/internal/errors"
)

const messyCaddyfile = `{
	email admin@example.com
}

(common) {
	encode gzip
}

# main site
a.com, www.a.com {
	import common
	reverse_proxy /api/* localhost:9000
	file_server
}
b.com {
	redir @old https://new.example.com permanent
}`

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"\n\n",
		"# only a comment\n",
		messyCaddyfile,
		messyCaddyfile + "\n",
		"app.example.com { reverse_proxy 127.0.0.1:8080 { health_checks { interval 10s } } }\n",
	}

	for _, in := range inputs {
		doc, err := Parse(in)
		require.NoError(t, err)
		assert.Equal(t, in, doc.String())
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse("a.com {\n\treverse_proxy x\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformed))
}

func TestList(t *testing.T) {
	doc, err := Parse(messyCaddyfile)
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Name: "(common)", Kind: KindOther},
		{Name: "a.com, www.a.com", Kind: KindReverseProxy, Target: "localhost:9000"},
		{Name: "b.com", Kind: KindRedirect, Target: "https://new.example.com"},
	}, doc.List())

	// The global options block is still a block, just not listed.
	assert.Len(t, doc.Blocks(), 4)
}

func TestAdd(t *testing.T) {
	t.Run("to empty document", func(t *testing.T) {
		doc, err := Parse("")
		require.NoError(t, err)

		b, err := doc.Add("a.com", KindReverseProxy, "")
		require.NoError(t, err)

		assert.Equal(t, "a.com {\n\treverse_proxy 127.0.0.1:8080\n}\n", doc.String())
		assert.Equal(t, Entry{Name: "a.com", Kind: KindReverseProxy, Target: "127.0.0.1:8080"}, b.Entry())
	})

	t.Run("appends after blank separator", func(t *testing.T) {
		doc, err := Parse("a.com {\n}\n")
		require.NoError(t, err)

		_, err = doc.Add("b.com", KindRedirect, "https://x.com")
		require.NoError(t, err)
		assert.Equal(t, "a.com {\n}\n\nb.com {\n\tredir https://x.com\n}\n", doc.String())
	})

	t.Run("reuses trailing blank line", func(t *testing.T) {
		doc, err := Parse("a.com {\n}\n\n")
		require.NoError(t, err)

		_, err = doc.Add("b.com", KindRedirect, "https://x.com")
		require.NoError(t, err)
		assert.Equal(t, "a.com {\n}\n\nb.com {\n\tredir https://x.com\n}\n", doc.String())
	})

	t.Run("after trailing comment", func(t *testing.T) {
		doc, err := Parse("a.com {\n}\n# end\n")
		require.NoError(t, err)

		_, err = doc.Add("b.com", KindRedirect, "https://x.com")
		require.NoError(t, err)
		assert.Equal(t, "a.com {\n}\n# end\n\nb.com {\n\tredir https://x.com\n}\n", doc.String())
	})

	t.Run("file without trailing newline", func(t *testing.T) {
		doc, err := Parse(messyCaddyfile)
		require.NoError(t, err)

		_, err = doc.Add("c.com", KindReverseProxy, "10.0.0.5:3000")
		require.NoError(t, err)
		assert.Equal(t, messyCaddyfile+"\n\nc.com {\n\treverse_proxy 10.0.0.5:3000\n}\n", doc.String())
	})

	t.Run("configured default upstream", func(t *testing.T) {
		doc, err := Parse("")
		require.NoError(t, err)
		doc.DefaultUpstream = "localhost:3000"

		b, err := doc.Add("a.com", KindReverseProxy, "")
		require.NoError(t, err)
		assert.Equal(t, "localhost:3000", b.Target)
	})

	t.Run("found by locator after add", func(t *testing.T) {
		doc, err := Parse(messyCaddyfile)
		require.NoError(t, err)

		b, err := doc.Add("n.com", KindRedirect, "https://n.org")
		require.NoError(t, err)

		text := doc.String()
		span, found, err := Find(text, "n.com")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, b.Raw, text[span.Start:span.End])

		reparsed, err := Parse(text)
		require.NoError(t, err)
		list := reparsed.List()
		assert.Equal(t, b.Entry(), list[len(list)-1])
	})
}

func TestAddDuplicate(t *testing.T) {
	doc, err := Parse("")
	require.NoError(t, err)

	first, err := doc.Add("a.com", KindReverseProxy, "")
	require.NoError(t, err)
	after := doc.String()

	_, err = doc.Add("a.com", KindRedirect, "https://x.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBlockExists))
	assert.Equal(t, first.Raw, errors.DetailOf(err))
	assert.Equal(t, after, doc.String())
}

func TestAddInvalid(t *testing.T) {
	tests := []struct {
		name   string
		block  string
		kind   Kind
		target string
	}{
		{"empty name", "", KindReverseProxy, ""},
		{"name with brace", "a.com {", KindReverseProxy, ""},
		{"name with newline", "a.com\nb.com", KindReverseProxy, ""},
		{"padded name", " a.com", KindReverseProxy, ""},
		{"redirect without target", "a.com", KindRedirect, ""},
		{"target with spaces", "a.com", KindReverseProxy, "x y"},
		{"target closing the block", "a.com", KindRedirect, "}"},
		{"target opening a block", "a.com", KindReverseProxy, "{"},
		{"unknown kind", "a.com", KindOther, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse("")
			require.NoError(t, err)

			_, err = doc.Add(tt.block, tt.kind, tt.target)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput))
			assert.Equal(t, "", doc.String())
		})
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		block string
		want  string
	}{
		{
			name:  "middle block takes preceding separator",
			text:  "a {\n}\n\nb {\n}\n\nc {\n}\n",
			block: "b",
			want:  "a {\n}\n\nc {\n}\n",
		},
		{
			name:  "first block takes following separator",
			text:  "a {\n}\n\nb {\n}\n",
			block: "a",
			want:  "b {\n}\n",
		},
		{
			name:  "last block",
			text:  "a {\n}\n\nb {\n}\n",
			block: "b",
			want:  "a {\n}\n",
		},
		{
			name:  "comments are kept",
			text:  "# header\n\n# site a\na {\n}\n# trailer\n",
			block: "a",
			want:  "# header\n\n# site a\n# trailer\n",
		},
		{
			name:  "only block",
			text:  "a {\n\treverse_proxy x\n}\n",
			block: "a",
			want:  "",
		},
		{
			name:  "nested block",
			text:  "a { reverse_proxy x { health_checks { interval 10s } } }\n\nb {\n}\n",
			block: "a",
			want:  "b {\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.text)
			require.NoError(t, err)

			require.NoError(t, doc.Remove(tt.block))
			assert.Equal(t, tt.want, doc.String())

			_, found, err := Find(doc.String(), tt.block)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestAddThenRemoveRestoresOriginal(t *testing.T) {
	for _, original := range []string{"", "a.com {\n}\n", messyCaddyfile + "\n", "# comment only\n"} {
		doc, err := Parse(original)
		require.NoError(t, err)

		_, err = doc.Add("new.example.com", KindReverseProxy, "")
		require.NoError(t, err)
		require.NoError(t, doc.Remove("new.example.com"))

		assert.Equal(t, original, doc.String())
	}
}

func TestRemoveNotFound(t *testing.T) {
	doc, err := Parse("a {\n}\n")
	require.NoError(t, err)

	err = doc.Remove("b")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBlockNotFound))
	assert.Equal(t, "a {\n}\n", doc.String())
}

func TestGlobalOptionsBlockNotAddressable(t *testing.T) {
	doc, err := Parse(messyCaddyfile)
	require.NoError(t, err)

	assert.Nil(t, doc.Get(""))
	assert.True(t, errors.Is(doc.Remove(""), errors.ErrBlockNotFound))

	_, err = doc.Replace("", KindReverseProxy, "")
	assert.True(t, errors.Is(err, errors.ErrBlockNotFound))

	_, err = doc.ReplaceBody("", "\temail other@example.com\n")
	assert.True(t, errors.Is(err, errors.ErrBlockNotFound))

	assert.Equal(t, messyCaddyfile, doc.String())
}

func TestReplace(t *testing.T) {
	doc, err := Parse("a {\n}\n\nb {\n\treverse_proxy x\n}\n\nc {\n}\n")
	require.NoError(t, err)

	b, err := doc.Replace("b", KindRedirect, "https://z.com")
	require.NoError(t, err)
	assert.Equal(t, KindRedirect, b.Kind)

	assert.Equal(t, "a {\n}\n\nb {\n\tredir https://z.com\n}\n\nc {\n}\n", doc.String())

	var names []string
	for _, e := range doc.List() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	_, err = doc.Replace("missing", KindRedirect, "https://z.com")
	assert.True(t, errors.Is(err, errors.ErrBlockNotFound))
}

func TestAddRedirectWithPlaceholder(t *testing.T) {
	doc, err := Parse("")
	require.NoError(t, err)

	b, err := doc.Add("old.com", KindRedirect, "https://new.com{uri}")
	require.NoError(t, err)
	assert.Equal(t, "https://new.com{uri}", b.Target)
	assert.Equal(t, "old.com {\n\tredir https://new.com{uri}\n}\n", doc.String())
}

func TestReplaceBody(t *testing.T) {
	doc, err := Parse("a {\n}\n\nb {\n\treverse_proxy x\n}\n")
	require.NoError(t, err)

	b, err := doc.ReplaceBody("a", "\tencode gzip\n\treverse_proxy 127.0.0.1:9000 {\n\t\tlb_policy first\n\t}\n")
	require.NoError(t, err)
	assert.Equal(t, Entry{Name: "a", Kind: KindReverseProxy, Target: "127.0.0.1:9000"}, b.Entry())
	assert.Equal(t, "a {\n\tencode gzip\n\treverse_proxy 127.0.0.1:9000 {\n\t\tlb_policy first\n\t}\n}\n\nb {\n\treverse_proxy x\n}\n", doc.String())

	before := doc.String()
	for _, body := range []string{"\treverse_proxy x {\n", "}\nevil {\n", "\t}\n\t{\n"} {
		_, err := doc.ReplaceBody("a", body)
		require.Error(t, err, "body %q", body)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	}
	assert.Equal(t, before, doc.String())
}

func TestBlockBody(t *testing.T) {
	doc, err := Parse("a {\n\treverse_proxy x\n\t}\nb { redir https://y.com }\n")
	require.NoError(t, err)

	assert.Equal(t, "\treverse_proxy x\n", doc.Get("a").Body)
	assert.Equal(t, "redir https://y.com", doc.Get("b").Body)
	assert.Nil(t, doc.Get("c"))
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		body       string
		wantKind   Kind
		wantTarget string
	}{
		{"\treverse_proxy 127.0.0.1:8080\n", KindReverseProxy, "127.0.0.1:8080"},
		{"\treverse_proxy /api/* localhost:9000\n", KindReverseProxy, "localhost:9000"},
		{"\treverse_proxy @api localhost:9000 localhost:9001\n", KindReverseProxy, "localhost:9000"},
		{"\treverse_proxy {\n\t\tto a:1\n\t}\n", KindReverseProxy, ""},
		{"\tencode gzip\n\tredir https://x.com\n", KindRedirect, "https://x.com"},
		{"\tredir https://x.com{uri} permanent\n", KindRedirect, "https://x.com{uri}"},
		{"\tredir /old /new\n", KindRedirect, "/new"},
		{"\tredir /new 301\n", KindRedirect, "/new"},
		{"\t# reverse_proxy commented\n\tfile_server\n", KindOther, ""},
		{"", KindOther, ""},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			kind, target := detectKind(tt.body)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantTarget, target)
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"reverse_proxy", KindReverseProxy, true},
		{"proxy", KindReverseProxy, true},
		{"Redirect", KindRedirect, true},
		{"redir", KindRedirect, true},
		{"static", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestEndToEndScenario(t *testing.T) {
	doc, err := Parse("")
	require.NoError(t, err)

	_, err = doc.Add("a.com", KindReverseProxy, "")
	require.NoError(t, err)
	_, err = doc.Add("b."+"a.com", KindRedirect, "https://x.com")
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Name: "a.com", Kind: KindReverseProxy, Target: "127.0.0.1:8080"},
		{Name: "b.a.com", Kind: KindRedirect, Target: "https://x.com"},
	}, doc.List())

	require.NoError(t, doc.Remove("a.com"))
	assert.Equal(t, []Entry{
		{Name: "b.a.com", Kind: KindRedirect, Target: "https://x.com"},
	}, doc.List())
	assert.Equal(t, "b.a.com {\n\tredir https://x.com\n}\n", doc.String())
}
