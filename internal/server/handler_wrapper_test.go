package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumina-fans/idolcms/internal/server/dto"
)

func TestPopulateQueryParams(t *testing.T) {
	t.Run("named and filters", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/tracks?q=love&sort=bpm&order=desc&page=2&pageSize=20&mood=dreamy&year=2023", nil)
		var req dto.ListRequest
		if err := populateQueryParams(r, &req); err != nil {
			t.Fatal(err)
		}
		if req.Query != "love" || req.Sort != "bpm" || req.Order != "desc" || req.Page != 2 || req.PageSize != 20 {
			t.Errorf("req = %+v", req)
		}
		if len(req.Filters) != 2 || req.Filters["mood"] != "dreamy" || req.Filters["year"] != "2023" {
			t.Errorf("filters = %v", req.Filters)
		}
	})
	t.Run("no filters", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/tracks?page=1", nil)
		var req dto.ListRequest
		if err := populateQueryParams(r, &req); err != nil {
			t.Fatal(err)
		}
		if req.Filters != nil {
			t.Errorf("filters = %v", req.Filters)
		}
	})
	t.Run("bad integer", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/tracks/trk_1/similar?n=lots", nil)
		var req dto.SimilarRequest
		if err := populateQueryParams(r, &req); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("not a struct", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/?a=b", nil)
		s := "x"
		if err := populateQueryParams(r, &s); err != nil {
			t.Error(err)
		}
	})
}

func TestPopulatePathParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/tracks/trk_7", nil)
	r.SetPathValue("id", "trk_7")
	var req dto.IDRequest
	populatePathParams(r, &req)
	if req.ID != "trk_7" {
		t.Errorf("ID = %q", req.ID)
	}
}
