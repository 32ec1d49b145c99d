package marktree

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
)

func BenchmarkRenderSample(b *testing.B) {
	data := mustReadSample(b, "testdata/sample.md")
	for _, width := range []int{50, 60, 80} {
		b.Run(intToWidthLabel(width), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			reader := bytes.NewReader(data)
			for i := 0; i < b.N; i++ {
				reader.Reset(data)
				_ = Render(RenderRequest{
					Reader: reader,
					Writer: io.Discard,
					Width:  width,
					Theme:  DefaultTheme(),
				})
			}
		})
	}
}

func BenchmarkHTMLSample(b *testing.B) {
	src := string(mustReadSample(b, "testdata/sample.md"))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := HTML(src); err != nil {
			b.Fatalf("html: %v", err)
		}
	}
}

func BenchmarkTreeSample(b *testing.B) {
	src := string(mustReadSample(b, "testdata/sample.md"))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Tree(src); err != nil {
			b.Fatalf("tree: %v", err)
		}
	}
}

func BenchmarkLexLargeDocument(b *testing.B) {
	src := string(bytes.Repeat(mustReadSample(b, "testdata/sample.md"), 20))
	b.ReportAllocs()
	b.SetBytes(int64(len(src)))
	for i := 0; i < b.N; i++ {
		if _, _, err := Lex(src); err != nil {
			b.Fatalf("lex: %v", err)
		}
	}
}

func BenchmarkHTTPRender(b *testing.B) {
	data := mustReadSample(b, "testdata/sample.md")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}))
	defer server.Close()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := HTTPRender(context.Background(), HTTPRenderRequest{
			URL:    server.URL,
			Writer: io.Discard,
			Width:  80,
			Theme:  DefaultTheme(),
		}); err != nil {
			b.Fatalf("http render: %v", err)
		}
	}
}

func mustReadSample(b *testing.B, path string) []byte {
	b.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		b.Fatalf("read %s: %v", path, err)
	}
	return data
}

func intToWidthLabel(width int) string {
	return "w" + strconv.Itoa(width)
}
