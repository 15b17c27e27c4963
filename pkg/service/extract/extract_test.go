package extract_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/paperboy/pkg/model"
	"github.com/m-mizutani/paperboy/pkg/service/extract"
)

func TestExtractRawText(t *testing.T) {
	svc := extract.New()

	text, err := svc.Extract(context.Background(), model.SourceText, []byte("  breaking news today  \n"))
	gt.NoError(t, err)
	gt.Equal(t, text, "breaking news today")
}

func TestExtractURLHarvestsParagraphs(t *testing.T) {
	page := `<html><body>
		<h1>Headline</h1>
		<p>First paragraph of the article.</p>
		<div><p>  Second paragraph, nested.  </p></div>
		<p></p>
		<script>ignored()</script>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	svc := extract.New()
	text, err := svc.Extract(context.Background(), model.SourceURL, []byte(srv.URL))
	gt.NoError(t, err)
	gt.Equal(t, text, "First paragraph of the article.\nSecond paragraph, nested.")
}

func TestExtractURLNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := extract.New()
	_, err := svc.Extract(context.Background(), model.SourceURL, []byte(srv.URL))
	gt.Error(t, err)
}

func TestExtractURLUnreachable(t *testing.T) {
	svc := extract.New()
	_, err := svc.Extract(context.Background(), model.SourceURL, []byte("http://127.0.0.1:1/nothing"))
	gt.Error(t, err)
}

func TestExtractEmptyPDF(t *testing.T) {
	svc := extract.New()
	_, err := svc.Extract(context.Background(), model.SourcePDF, nil)
	gt.Error(t, err)
}

func TestExtractUnknownSource(t *testing.T) {
	svc := extract.New()
	_, err := svc.Extract(context.Background(), model.SourceType("audio"), []byte("x"))
	gt.Error(t, err)
}
