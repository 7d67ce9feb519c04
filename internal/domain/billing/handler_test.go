package billing

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gouache/gouache-api/internal/domain/campaign"
	"github.com/gouache/gouache-api/internal/domain/partner"
	"github.com/gouache/gouache-api/internal/middleware"
)

func testHandler() (*Handler, *fakeCharger) {
	p := billablePartner()
	ps := &fakePartnerStore{partners: []partner.Partner{p}}
	cs := &fakeCampaignStore{campaigns: map[uuid.UUID][]campaign.Campaign{
		p.ID: {spentCampaign(p.ID, "spring show", 250)},
	}}
	charger := &fakeCharger{}
	engine := newTestEngine(ps, cs, &fakeLedger{}, charger)
	return NewHandler(engine, nil, nil), charger
}

func TestCronRunRejectedWithoutSecret(t *testing.T) {
	h, charger := testHandler()
	router := CronRoutes(h, middleware.CronAuth("cron-secret"))

	req := httptest.NewRequest(http.MethodPost, "/run", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, charger.requests)
}

func TestCronRunChargesWithSecret(t *testing.T) {
	h, charger := testHandler()
	router := CronRoutes(h, middleware.CronAuth("cron-secret"))

	req := httptest.NewRequest(http.MethodPost, "/run", nil)
	req.Header.Set("X-Cron-Key", "cron-secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, charger.requests, 1)
	assert.Contains(t, w.Body.String(), `"charged":1`)
}

func TestAdminRunInvalidPartnerID(t *testing.T) {
	h, _ := testHandler()

	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`{"partner_id":"not-a-uuid"}`))
	w := httptest.NewRecorder()
	http.HandlerFunc(h.RunAdmin).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRunUnknownPartner(t *testing.T) {
	h, _ := testHandler()

	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`{"partner_id":"`+uuid.NewString()+`"}`))
	w := httptest.NewRecorder()
	http.HandlerFunc(h.RunAdmin).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRunEmptyBodyRunsFullCycle(t *testing.T) {
	h, charger := testHandler()

	req := httptest.NewRequest(http.MethodPost, "/run", nil)
	w := httptest.NewRecorder()
	http.HandlerFunc(h.RunAdmin).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, charger.requests, 1)
}
