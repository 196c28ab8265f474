package prodsearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Search_Results(t *testing.T) {
	var gotAuth string
	var gotBody SearchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path: got %s, want /search", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":            true,
			"searchStrategyUsed": "Stage 2: category-only search",
			"products":           []map[string]any{{"name": "Laptop"}},
			"totalProducts":      35,
			"totalPages":         2,
			"message":            "Found 35 products",
		})
	}))
	defer srv.Close()

	client, err := New(srv.URL, WithAPIKey("secret"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	out, err := client.Search(context.Background(), SearchRequest{Query: "cheapest laptops", Debug: true})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if gotAuth != "Bearer secret" {
		t.Errorf("auth header: got %q", gotAuth)
	}
	if gotBody.Query != "cheapest laptops" || !gotBody.Debug {
		t.Errorf("request body: got %+v", gotBody)
	}
	if !out.Found() {
		t.Fatal("found: got false, want true")
	}
	if out.Results.SearchStrategyUsed != "Stage 2: category-only search" {
		t.Errorf("strategy: got %q", out.Results.SearchStrategyUsed)
	}
	if out.Results.TotalProducts != 35 || len(out.Results.Products) != 1 {
		t.Errorf("products: got %d/%d", len(out.Results.Products), out.Results.TotalProducts)
	}
}

func TestClient_Search_Alternatives(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "No products found",
			"alternatives": map[string]any{
				"availableCategories": []map[string]any{
					{"id": 1, "name": "Chairs", "slug": "chairs", "productCount": 4},
				},
				"suggestions": []string{"Try a broader term"},
				"searchTips":  []string{"Use fewer words"},
			},
			"debug": map[string]any{
				"stagesAttempted": []string{"Stage 1: full search", "Stage 5: alternatives"},
			},
		})
	}))
	defer srv.Close()

	client, _ := New(srv.URL)
	out, err := client.Search(context.Background(), SearchRequest{Query: "zzz"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if out.Found() {
		t.Fatal("found: got true, want false")
	}
	if len(out.Alternatives.AvailableCategories) != 1 ||
		out.Alternatives.AvailableCategories[0].Slug != "chairs" {
		t.Errorf("categories: got %+v", out.Alternatives.AvailableCategories)
	}
	if out.Debug == nil || len(out.Debug.StagesAttempted) != 2 {
		t.Errorf("debug: got %+v", out.Debug)
	}
}

func TestClient_Search_MissingQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":      map[string]string{"code": "missing_query", "message": "Search query is required"},
			"suggestion": "Provide a search phrase.",
		})
	}))
	defer srv.Close()

	client, _ := New(srv.URL)
	_, err := client.Search(context.Background(), SearchRequest{})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type: got %T", err)
	}
	if apiErr.Code != CodeMissingQuery || apiErr.Status != http.StatusBadRequest {
		t.Errorf("api error: got %+v", apiErr)
	}
	if apiErr.Suggestion == "" {
		t.Error("suggestion: empty")
	}
}

func TestClient_AnalyzeIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/intent" {
			t.Errorf("path: got %s, want /intent", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"rawQuery":      "cheapest laptops",
			"cleanedQuery":  "laptops",
			"sortBy":        "price",
			"sortDirection": "asc",
			"category":      map[string]any{"id": 3, "slug": "laptops", "name": "Laptops", "matchType": "exact", "confidence": 1.0},
		})
	}))
	defer srv.Close()

	client, _ := New(srv.URL)
	it, err := client.AnalyzeIntent(context.Background(), "cheapest laptops")
	if err != nil {
		t.Fatalf("analyze intent: %v", err)
	}

	if it.SortBy != "price" || it.SortDirection != "asc" {
		t.Errorf("sort: got %s/%s", it.SortBy, it.SortDirection)
	}
	if it.Category == nil || it.Category.Slug != "laptops" {
		t.Errorf("category: got %+v", it.Category)
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}
