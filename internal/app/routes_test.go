package app_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal_backend/internal/app"
	"portal_backend/internal/services/dto"
)

func upload(t *testing.T, a *app.App, path, token string, fields map[string]string, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		img.Set(x, x%20, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func idOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		ID string `json:"id"`
	}
	decode(t, w, &body)
	require.NotEmpty(t, body.ID, w.Body.String())
	return body.ID
}

type mosqueFixture struct {
	a         *app.App
	adminA    string
	adminB    string
	candidate string
}

func newMosqueFixture(t *testing.T) *mosqueFixture {
	a := newTestApp(t)
	return &mosqueFixture{
		a: a,
		adminA: register(t, a, dto.RegisterRequest{
			Email: "takmir@al-ikhlas.test", Password: "password123", Name: "Takmir A",
			Role: "mosque_admin", OrganizationName: "Masjid Al-Ikhlas",
		}).AccessToken,
		adminB: register(t, a, dto.RegisterRequest{
			Email: "takmir@an-nur.test", Password: "password123", Name: "Takmir B",
			Role: "mosque_admin", OrganizationName: "Masjid An-Nur",
		}).AccessToken,
		candidate: register(t, a, dto.RegisterRequest{
			Email: "jamaah@example.com", Password: "password123", Name: "Jamaah",
		}).AccessToken,
	}
}

func TestMosqueRoutes_RejectOtherRoles(t *testing.T) {
	f := newMosqueFixture(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/qurban/hewan"},
		{http.MethodGet, "/api/qurban/dashboard"},
		{http.MethodGet, "/api/finance/summary"},
		{http.MethodGet, "/api/finance/transactions"},
		{http.MethodGet, "/api/itikaf/events"},
	} {
		w := do(t, f.a, tc.method, tc.path, f.candidate, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, tc.path)

		w = do(t, f.a, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}

	w := upload(t, f.a, "/api/ocr", f.candidate, nil, "nota.png", samplePNG(t))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestQurbanRoutes(t *testing.T) {
	f := newMosqueFixture(t)

	w := do(t, f.a, http.MethodPost, "/api/qurban/hewan", f.adminA, map[string]interface{}{
		"code": "S-01", "type": "sapi", "weight": 350, "price": "25000000",
		"shohibul": []string{"Ahmad", "Fatimah"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	hewanID := idOf(t, w)

	w = do(t, f.a, http.MethodPost, "/api/qurban/hewan", f.adminA, map[string]interface{}{"code": "S-02", "type": "unta"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, f.a, http.MethodGet, "/api/qurban/hewan/"+hewanID, f.adminA, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var hewan struct {
		Code          string   `json:"code"`
		ShohibulNames []string `json:"shohibul_names"`
	}
	decode(t, w, &hewan)
	assert.Equal(t, "S-01", hewan.Code)
	assert.Equal(t, []string{"Ahmad", "Fatimah"}, hewan.ShohibulNames)

	w = do(t, f.a, http.MethodPatch, "/api/qurban/hewan/"+hewanID+"/status", f.adminA, map[string]string{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the other mosque sees none of it
	w = do(t, f.a, http.MethodGet, "/api/qurban/hewan/"+hewanID, f.adminB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, f.a, http.MethodPatch, "/api/qurban/hewan/"+hewanID+"/status", f.adminB, map[string]string{"status": "slaughtered"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, f.a, http.MethodGet, "/api/qurban/hewan", f.adminB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page dto.PaginatedResponse
	decode(t, w, &page)
	assert.EqualValues(t, 0, page.Total)

	w = do(t, f.a, http.MethodGet, "/api/qurban/counts", f.adminA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var counts struct {
		Counts map[string]int64 `json:"counts"`
	}
	decode(t, w, &counts)
	assert.EqualValues(t, 1, counts.Counts["paid"])

	w = do(t, f.a, http.MethodPost, "/api/qurban/products", f.adminA, map[string]interface{}{"name": "Daging Sapi", "unit": "kg", "stock": 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	productID := idOf(t, w)

	w = do(t, f.a, http.MethodPost, "/api/qurban/products/"+productID+"/distribute", f.adminB, map[string]int{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, f.a, http.MethodPost, "/api/qurban/products/"+productID+"/distribute", f.adminA, map[string]int{"quantity": 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var product struct {
		Stock int `json:"stock"`
	}
	decode(t, w, &product)
	assert.Equal(t, 6, product.Stock)
}

func TestFinanceRoutes(t *testing.T) {
	f := newMosqueFixture(t)

	w := do(t, f.a, http.MethodPost, "/api/finance/categories", f.adminA, map[string]string{"name": "Infaq Jumat", "type": "income"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	categoryID := idOf(t, w)

	w = do(t, f.a, http.MethodPost, "/api/finance/transactions", f.adminA, map[string]interface{}{
		"category_id": categoryID, "type": "income", "amount": "150000", "description": "Kotak Jumat",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, f.a, http.MethodPost, "/api/finance/transactions", f.adminA, map[string]interface{}{
		"category_id": categoryID, "type": "income", "amount": "-5",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// a category of another mosque cannot be booked against
	w = do(t, f.a, http.MethodPost, "/api/finance/transactions", f.adminB, map[string]interface{}{
		"category_id": categoryID, "type": "income", "amount": "1000",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, f.a, http.MethodGet, "/api/finance/summary", f.adminA, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary struct {
		Income  decimal.Decimal `json:"income"`
		Balance decimal.Decimal `json:"balance"`
		Count   int             `json:"count"`
	}
	decode(t, w, &summary)
	assert.True(t, summary.Income.Equal(decimal.NewFromInt(150000)), summary.Income.String())
	assert.True(t, summary.Balance.Equal(decimal.NewFromInt(150000)), summary.Balance.String())
	assert.Equal(t, 1, summary.Count)

	w = do(t, f.a, http.MethodGet, "/api/finance/summary", f.adminB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary.Count = -1
	decode(t, w, &summary)
	assert.Zero(t, summary.Count)

	w = do(t, f.a, http.MethodGet, "/api/finance/export/csv", f.adminA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Body.String(), "Infaq Jumat")

	w = do(t, f.a, http.MethodGet, "/api/finance/export/csv", f.adminB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Infaq Jumat")

	// no spreadsheet configured in tests
	w = do(t, f.a, http.MethodPost, "/api/finance/export/sheet", f.adminA, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestItikafRoutes(t *testing.T) {
	f := newMosqueFixture(t)
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	w := do(t, f.a, http.MethodPost, "/api/itikaf/events", f.adminA, map[string]interface{}{
		"name": "Itikaf Ramadhan", "start_date": start, "end_date": start.AddDate(0, 0, 9), "capacity": 50,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	eventID := idOf(t, w)

	w = do(t, f.a, http.MethodPost, "/api/itikaf/events", f.adminA, map[string]interface{}{
		"name": "Itikaf Setahun", "start_date": start, "end_date": start.AddDate(1, 0, 0),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, f.a, http.MethodPost, "/api/itikaf/events/"+eventID+"/participants", f.adminA, map[string]interface{}{
		"code": "P1", "name": "Hasan", "gender": "L", "nights": []int{1, 2},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, f.a, http.MethodGet, "/api/itikaf/events/"+eventID, f.adminB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, f.a, http.MethodGet, "/api/itikaf/events/"+eventID+"/participants", f.adminB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, f.a, http.MethodPost, "/api/itikaf/events/"+eventID+"/participants", f.adminB, map[string]interface{}{"name": "Penyusup"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, f.a, http.MethodGet, "/api/itikaf/events/"+eventID+"/participants", f.adminA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Participants []struct {
			Code string `json:"code"`
		} `json:"participants"`
	}
	decode(t, w, &list)
	require.Len(t, list.Participants, 1)
	assert.Equal(t, "P1", list.Participants[0].Code)

	// attendance lives in Google Sheets, which tests do not configure
	w = do(t, f.a, http.MethodPost, "/api/itikaf/events/"+eventID+"/check-in", f.adminA, map[string]interface{}{"code": "P1", "night": 1})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = do(t, f.a, http.MethodGet, "/api/itikaf/events/"+eventID+"/attendance", f.adminA, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestOCRNotConfigured(t *testing.T) {
	f := newMosqueFixture(t)

	w := upload(t, f.a, "/api/ocr", f.adminA, nil, "nota.png", samplePNG(t))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())

	w = do(t, f.a, http.MethodPost, "/api/ocr", f.adminA, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRoutes(t *testing.T) {
	f := newMosqueFixture(t)
	data := samplePNG(t)

	w := upload(t, f.a, "/api/uploads", "", map[string]string{"usage": "avatar"}, "me.png", data)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = upload(t, f.a, "/api/uploads", f.candidate, map[string]string{"usage": "selfie"}, "me.png", data)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, f.a, "/api/uploads", f.candidate, map[string]string{"usage": "avatar"}, "notes.txt", []byte("just text, not an image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, f.a, "/api/uploads", f.candidate, map[string]string{"usage": "avatar"}, "me.png", data)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var up struct {
		ID       string `json:"id"`
		URL      string `json:"url"`
		MimeType string `json:"mime_type"`
	}
	decode(t, w, &up)
	assert.Equal(t, "image/png", up.MimeType)
	require.True(t, strings.HasPrefix(up.URL, "/api/files/avatar/"), up.URL)

	w = do(t, f.a, http.MethodGet, "/api/uploads/mine", f.candidate, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		Uploads []struct {
			ID string `json:"id"`
		} `json:"uploads"`
	}
	decode(t, w, &mine)
	require.Len(t, mine.Uploads, 1)
	assert.Equal(t, up.ID, mine.Uploads[0].ID)

	w = do(t, f.a, http.MethodGet, up.URL, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, data, w.Body.Bytes())

	// uploads belong to their owner
	w = do(t, f.a, http.MethodDelete, "/api/uploads/"+up.ID, f.adminA, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, f.a, http.MethodDelete, "/api/uploads/"+up.ID, f.candidate, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, f.a, http.MethodGet, up.URL, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileRoutes(t *testing.T) {
	a := newTestApp(t)
	candidate := register(t, a, dto.RegisterRequest{Email: "dewi@example.com", Password: "password123", Name: "Dewi"})
	recruiter := register(t, a, dto.RegisterRequest{
		Email: "hr@acme.test", Password: "password123", Name: "Acme HR",
		Role: "recruiter", OrganizationName: "Acme",
	})
	outsider := register(t, a, dto.RegisterRequest{
		Email: "hr@globex.test", Password: "password123", Name: "Globex HR",
		Role: "recruiter", OrganizationName: "Globex",
	})

	w := do(t, a, http.MethodPut, "/api/profile", candidate.AccessToken, map[string]interface{}{
		"headline": "Akuntan", "skills": []string{"Excel", "excel", "Pajak"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, a, http.MethodGet, "/api/profile", candidate.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var own dto.ProfileResponse
	decode(t, w, &own)
	assert.Equal(t, []string{"Excel", "Pajak"}, own.Skills)
	assert.Equal(t, "dewi@example.com", own.User.Email)

	candidatePath := "/api/profile/candidates/" + candidate.User.ID

	// recruiters only see candidates who applied to their organization
	w = do(t, a, http.MethodGet, candidatePath, recruiter.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, a, http.MethodPost, "/api/org/jobs", recruiter.AccessToken, map[string]interface{}{
		"title": "Staf Keuangan", "description": "Mengelola pembukuan harian.",
		"employment_type": "full_time", "status": "open",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	jobID := idOf(t, w)
	w = do(t, a, http.MethodPost, "/api/jobs/"+jobID+"/apply", candidate.AccessToken, map[string]interface{}{})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, a, http.MethodGet, candidatePath, recruiter.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var seen dto.ProfileResponse
	decode(t, w, &seen)
	assert.Equal(t, "Akuntan", seen.Profile.Headline)

	w = do(t, a, http.MethodGet, candidatePath, outsider.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, a, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
