package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/crs/internal/application/dto"
	"github.com/turtacn/crs/internal/interfaces/http/handlers"
	"github.com/turtacn/crs/pkg/errors"
)

type stubRegistry struct {
	publishResp *dto.ServiceResponse
	publishErr  error
	fetchResp   *dto.ServiceResponse
	fetchErr    error
	listResp    *dto.ListServicesResponse
	swaggerDoc  []byte
	updateResp  *dto.ServiceResponse
	updateErr   error
	deleteErr   error
}

func (s *stubRegistry) Publish(context.Context, *dto.PublishServiceRequest) (*dto.ServiceResponse, error) {
	return s.publishResp, s.publishErr
}

func (s *stubRegistry) Fetch(context.Context, string, string) (*dto.ServiceResponse, error) {
	return s.fetchResp, s.fetchErr
}

func (s *stubRegistry) List(context.Context, *dto.ListServicesRequest) (*dto.ListServicesResponse, error) {
	return s.listResp, nil
}

func (s *stubRegistry) Swagger(context.Context, string, string) ([]byte, error) {
	return s.swaggerDoc, nil
}

func (s *stubRegistry) UpdateModel(context.Context, string, string, *dto.UpdateModelRequest) (*dto.ServiceResponse, error) {
	return s.updateResp, s.updateErr
}

func (s *stubRegistry) Delete(context.Context, string, string) error {
	return s.deleteErr
}

type stubTrainer struct {
	resp      *dto.TrainModelResponse
	pruneResp *dto.PruneModelsResponse
	err       error
}

func (s *stubTrainer) Train(context.Context, *dto.TrainModelRequest) (*dto.TrainModelResponse, error) {
	return s.resp, s.err
}

func (s *stubTrainer) Prune(context.Context, *dto.PruneModelsRequest) (*dto.PruneModelsResponse, error) {
	return s.pruneResp, s.err
}

func newRegistryRouter(reg *stubRegistry, trainer *stubTrainer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewRegistryHandler(reg, trainer)
	engine := gin.New()
	engine.POST("/api/v1/services", h.Publish)
	engine.GET("/api/v1/services/:name/:version", h.Fetch)
	engine.GET("/api/v1/services/:name/:version/swagger.json", h.Swagger)
	engine.PUT("/api/v1/services/:name/:version/model", h.UpdateModel)
	engine.DELETE("/api/v1/services/:name/:version", h.Delete)
	engine.POST("/api/v1/models/train", h.Train)
	engine.POST("/api/v1/models/prune", h.Prune)
	return engine
}

func TestRegistryHandler_PublishCreated(t *testing.T) {
	reg := &stubRegistry{publishResp: &dto.ServiceResponse{Name: "creditdefault", Version: "1.0.0", Generation: 1}}
	engine := newRegistryRouter(reg, &stubTrainer{})

	body, _ := json.Marshal(dto.PublishServiceRequest{
		Name:    "creditdefault",
		Version: "1.0.0",
		ModelID: "3b9f2a60-945c-4bb2-9d14-27e430c1a000",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/services", bytes.NewReader(body))
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestRegistryHandler_PublishMalformedBody(t *testing.T) {
	engine := newRegistryRouter(&stubRegistry{}, &stubTrainer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/services", bytes.NewReader([]byte("{not-json")))
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistryHandler_PublishConflict(t *testing.T) {
	reg := &stubRegistry{publishErr: errors.ErrServiceExists("creditdefault", "1.0.0")}
	engine := newRegistryRouter(reg, &stubTrainer{})

	body, _ := json.Marshal(dto.PublishServiceRequest{
		Name:    "creditdefault",
		Version: "1.0.0",
		ModelID: "3b9f2a60-945c-4bb2-9d14-27e430c1a000",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/services", bytes.NewReader(body))
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "conflict", resp.Error.Code)
}

func TestRegistryHandler_FetchNotFound(t *testing.T) {
	reg := &stubRegistry{fetchErr: errors.ErrServiceNotFound("ghost", "0.0.1")}
	engine := newRegistryRouter(reg, &stubTrainer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/services/ghost/0.0.1", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegistryHandler_SwaggerServedRaw(t *testing.T) {
	reg := &stubRegistry{swaggerDoc: []byte(`{"swagger":"2.0"}`)}
	engine := newRegistryRouter(reg, &stubTrainer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/services/creditdefault/1.0.0/swagger.json", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"swagger":"2.0"}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestRegistryHandler_UpdateModelStaleGeneration(t *testing.T) {
	reg := &stubRegistry{updateErr: errors.ErrGenerationConflict("creditdefault", "1.0.0", 1)}
	engine := newRegistryRouter(reg, &stubTrainer{})

	body, _ := json.Marshal(dto.UpdateModelRequest{
		ModelID:            "3b9f2a60-945c-4bb2-9d14-27e430c1a000",
		ExpectedGeneration: 1,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/services/creditdefault/1.0.0/model", bytes.NewReader(body))
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegistryHandler_DeleteNoContent(t *testing.T) {
	engine := newRegistryRouter(&stubRegistry{}, &stubTrainer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/services/creditdefault/1.0.0", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRegistryHandler_TrainCreated(t *testing.T) {
	trainer := &stubTrainer{resp: &dto.TrainModelResponse{ModelID: "m-1", Algorithm: "gbdt"}}
	engine := newRegistryRouter(&stubRegistry{}, trainer)

	body, _ := json.Marshal(dto.TrainModelRequest{DatasetPath: "/data/accounts.csv"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/models/train", bytes.NewReader(body))
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRegistryHandler_PruneReportsRemoved(t *testing.T) {
	trainer := &stubTrainer{pruneResp: &dto.PruneModelsResponse{Removed: 3, KeepDays: 30}}
	engine := newRegistryRouter(&stubRegistry{}, trainer)

	body, _ := json.Marshal(dto.PruneModelsRequest{KeepDays: 30})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/models/prune", bytes.NewReader(body))
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	payload, _ := json.Marshal(resp.Data)
	var pruned dto.PruneModelsResponse
	require.NoError(t, json.Unmarshal(payload, &pruned))
	assert.Equal(t, int64(3), pruned.Removed)
}
