package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdapterHandler_HandleList(t *testing.T) {
	disc := new(MockDiscovery)
	disc.On("ListAdapters", mock.Anything).Return([]domain.AdapterHandle{{ID: "wlan0", Name: "wlan0"}}, nil)

	rr := httptest.NewRecorder()
	NewAdapterHandler(disc).HandleList(rr, httptest.NewRequest(http.MethodGet, "/api/adapters", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":"wlan0"`)
}

func TestAdapterHandler_HandleScan(t *testing.T) {
	disc := new(MockDiscovery)
	disc.On("Scan", mock.Anything, "wlan0").Return([]domain.Network{{SSID: "HomeNet", Source: domain.NetworkSourceScan}}, nil)
	disc.On("Scan", mock.Anything, "wlan9").Return(nil, domain.ErrAdapterNotFound)
	h := NewAdapterHandler(disc)

	scan := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/adapters/"+id+"/scan", nil)
		req = mux.SetURLVars(req, map[string]string{"id": id})
		rr := httptest.NewRecorder()
		h.HandleScan(rr, req)
		return rr
	}

	rr := scan("wlan0")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"ssid":"HomeNet"`)

	assert.Equal(t, http.StatusBadRequest, scan("wlan9").Code)
	assert.Equal(t, http.StatusBadRequest, scan("wlan0;reboot").Code)
}

func captureUpload(t *testing.T, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "capture.pcap")
	require.NoError(t, err)
	part.Write(content)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/captures/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAdapterHandler_HandleImport(t *testing.T) {
	disc := new(MockDiscovery)
	var seen string
	disc.On("ImportCapture", mock.Anything, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			seen = args.String(1)
			data, err := os.ReadFile(seen)
			assert.NoError(t, err)
			assert.Equal(t, "pcap-bytes", string(data))
		}).
		Return([]domain.Network{{SSID: "Lab", Source: domain.NetworkSourceCapture}}, nil)

	rr := httptest.NewRecorder()
	NewAdapterHandler(disc).HandleImport(rr, captureUpload(t, []byte("pcap-bytes")))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"ssid":"Lab"`)
	_, err := os.Stat(seen)
	assert.True(t, os.IsNotExist(err), "temporary capture is removed")
}

func TestAdapterHandler_HandleImportErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewAdapterHandler(new(MockDiscovery)).HandleImport(rr, httptest.NewRequest(http.MethodPost, "/api/captures/import", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unreadable capture", func(t *testing.T) {
		disc := new(MockDiscovery)
		disc.On("ImportCapture", mock.Anything, mock.Anything).Return(nil, errors.New("unsupported link type"))

		rr := httptest.NewRecorder()
		NewAdapterHandler(disc).HandleImport(rr, captureUpload(t, []byte("garbage")))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
