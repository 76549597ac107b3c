package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/DJaayy/slot-booking/internal/model"
	"github.com/DJaayy/slot-booking/internal/repository"
)

func templateBody() map[string]any {
	return map[string]any{
		"name":     "Friday Freeze Notice",
		"category": "reminder",
		"subject":  "Freeze starts {{date}}",
		"body":     "No deploys after {{date}}. Ping {{team}} with questions.",
		"variables": map[string]string{
			"date": "freeze start date",
			"team": "owning team",
		},
	}
}

func TestTemplateCRUD(t *testing.T) {
	v := newEnv(t)
	admin := v.token(t, "ADMIN")

	rec := v.do(t, http.MethodPost, "/api/templates", admin, templateBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d, body %s", rec.Code, rec.Body.String())
	}
	var created model.EmailTemplate
	decode(t, rec, &created)
	if created.ID == 0 || created.IsDefault {
		t.Fatalf("created = %+v, want non-zero id and not default", created)
	}

	path := fmt.Sprintf("/api/templates/%d", created.ID)
	rec = v.do(t, http.MethodGet, path, admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get = %d", rec.Code)
	}

	rec = v.do(t, http.MethodGet, "/api/templates?category=reminder", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d", rec.Code)
	}
	var listed []model.EmailTemplate
	decode(t, rec, &listed)
	found := false
	for _, tpl := range listed {
		if tpl.Category != model.CategoryReminder {
			t.Errorf("category filter leaked %q", tpl.Category)
		}
		if tpl.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("created template missing from filtered list")
	}

	update := templateBody()
	update["subject"] = "Freeze is now {{date}}"
	rec = v.do(t, http.MethodPut, path, admin, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated model.EmailTemplate
	decode(t, rec, &updated)
	if updated.Subject != "Freeze is now {{date}}" {
		t.Errorf("subject = %q after update", updated.Subject)
	}

	rec = v.do(t, http.MethodDelete, path, admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d", rec.Code)
	}
	rec = v.do(t, http.MethodGet, path, admin, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", rec.Code)
	}
}

func TestTemplateValidation(t *testing.T) {
	v := newEnv(t)
	admin := v.token(t, "ADMIN")

	bad := templateBody()
	bad["category"] = "newsletter"
	if rec := v.do(t, http.MethodPost, "/api/templates", admin, bad); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad category = %d, want 400", rec.Code)
	}
	bad = templateBody()
	bad["subject"] = ""
	if rec := v.do(t, http.MethodPost, "/api/templates", admin, bad); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty subject = %d, want 400", rec.Code)
	}
	if rec := v.do(t, http.MethodGet, "/api/templates?category=newsletter", admin, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad filter = %d, want 400", rec.Code)
	}
}

func TestDefaultTemplateProtected(t *testing.T) {
	v := newEnv(t)
	admin := v.token(t, "ADMIN")
	if err := repository.SeedDefaultTemplates(context.Background(), v.store); err != nil {
		t.Fatalf("SeedDefaultTemplates: %v", err)
	}
	templates, err := v.store.GetEmailTemplates(context.Background(), "")
	if err != nil || len(templates) == 0 {
		t.Fatalf("GetEmailTemplates = %d, %v", len(templates), err)
	}
	path := fmt.Sprintf("/api/templates/%d", templates[0].ID)
	rec := v.do(t, http.MethodDelete, path, admin, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("delete default = %d, want 403, body %s", rec.Code, rec.Body.String())
	}
}

func TestTemplatePreview(t *testing.T) {
	v := newEnv(t)
	admin := v.token(t, "ADMIN")
	member := v.token(t, "MEMBER")

	rec := v.do(t, http.MethodPost, "/api/templates", admin, templateBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d", rec.Code)
	}
	var created model.EmailTemplate
	decode(t, rec, &created)

	path := fmt.Sprintf("/api/templates/%d/preview", created.ID)
	rec = v.do(t, http.MethodPost, path, member, map[string]string{"date": "2026-09-18"})
	if rec.Code != http.StatusOK {
		t.Fatalf("preview = %d, body %s", rec.Code, rec.Body.String())
	}
	var preview struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	decode(t, rec, &preview)
	if preview.Subject != "Freeze starts 2026-09-18" {
		t.Errorf("subject = %q", preview.Subject)
	}
	if preview.Body != "No deploys after 2026-09-18. Ping {{team}} with questions." {
		t.Errorf("body = %q, unsupplied placeholder must stay", preview.Body)
	}
}

func TestTemplateRoleGating(t *testing.T) {
	v := newEnv(t)
	member := v.token(t, "MEMBER")

	if rec := v.do(t, http.MethodGet, "/api/templates", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("list without token = %d, want 401", rec.Code)
	}
	if rec := v.do(t, http.MethodGet, "/api/templates", member, nil); rec.Code != http.StatusOK {
		t.Fatalf("member list = %d, want 200", rec.Code)
	}
	if rec := v.do(t, http.MethodPost, "/api/templates", member, templateBody()); rec.Code != http.StatusForbidden {
		t.Fatalf("member create = %d, want 403", rec.Code)
	}
	if rec := v.do(t, http.MethodDelete, "/api/templates/1", member, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("member delete = %d, want 403", rec.Code)
	}
}
