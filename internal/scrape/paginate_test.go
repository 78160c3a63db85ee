package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmenendez/explorastur/internal/event"
)

func pageHTML(title, next string) string {
	link := ""
	if next != "" {
		link = fmt.Sprintf(`<ul class="pager"><li><a href=%q>Siguiente</a></li></ul>`, next)
	}
	return fmt.Sprintf(`<html><body><h1>%s</h1>%s</body></html>`, title, link)
}

func titleExtract(doc *goquery.Document) []event.Event {
	return []event.Event{{Title: doc.Find("h1").Text()}}
}

func pagerNext(base string) func(*goquery.Document) string {
	return func(doc *goquery.Document) string {
		return findLinkContaining(doc, ".pager li a", "Siguiente", base)
	}
}

func TestPaginateFollowsNextLinks(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML("uno", "/p2"))
	})
	mux.HandleFunc("/p2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML("dos", ""))
	})

	events, err := paginate(context.Background(), testFetcher(), discard(), server.URL, 3,
		titleExtract, pagerNext(server.URL))
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Title != "uno" || events[1].Title != "dos" {
		t.Errorf("events = %v", events)
	}
}

func TestPaginateStopsAtMaxPages(t *testing.T) {
	var pages int
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		pages++
		fmt.Fprint(w, pageHTML(fmt.Sprintf("pagina %d", pages), fmt.Sprintf("/?p=%d", pages+1)))
	})

	events, err := paginate(context.Background(), testFetcher(), discard(), server.URL, 2,
		titleExtract, pagerNext(server.URL))
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 pages' worth", len(events))
	}
}

func TestPaginateFirstPageFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := paginate(context.Background(), testFetcher(), discard(), server.URL, 3,
		titleExtract, pagerNext(server.URL)); err == nil {
		t.Fatal("expected error when the first page fails")
	}
}

func TestPaginateKeepsResultsOnLaterFailure(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML("uno", "/p2"))
	})
	mux.HandleFunc("/p2", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	events, err := paginate(context.Background(), testFetcher(), discard(), server.URL, 3,
		titleExtract, pagerNext(server.URL))
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if len(events) != 1 || events[0].Title != "uno" {
		t.Errorf("events = %v, want first page kept", events)
	}
}
