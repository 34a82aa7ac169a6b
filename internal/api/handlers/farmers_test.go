package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sproutsell/agricredit/internal/farmers"
	"github.com/sproutsell/agricredit/pkg/logger"
)

type fakeFarmersService struct {
	farmers map[string]*farmers.Farmer
	err     error
}

func (f *fakeFarmersService) Register(ctx context.Context, input farmers.RegisterInput) (*farmers.Farmer, error) {
	if f.err != nil {
		return nil, f.err
	}
	farmer := &farmers.Farmer{ID: "farmer-1", Name: input.Name, Email: input.Email, Role: input.Role}
	return farmer, nil
}

func (f *fakeFarmersService) Get(ctx context.Context, id string) (*farmers.Farmer, error) {
	if f.err != nil {
		return nil, f.err
	}
	farmer, ok := f.farmers[id]
	if !ok {
		return nil, farmers.ErrNotFound
	}
	return farmer, nil
}

func TestFarmersRegister(t *testing.T) {
	handler := NewFarmersHandler(&fakeFarmersService{}, logger.NewNop())

	body := `{"name":"Wanjiku Kamau","email":"wanjiku@example.com","role":"farmer"}`
	rec := doRequest(t, handler.Register, http.MethodPost, "/api/farmers", body, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	parsed := decodeEnvelope(t, rec)
	assert.Equal(t, true, parsed["success"])
	assert.Equal(t, "User created successfully", parsed["message"])
}

func TestFarmersRegisterValidation(t *testing.T) {
	handler := NewFarmersHandler(&fakeFarmersService{err: farmers.ErrInvalidInput}, logger.NewNop())

	rec := doRequest(t, handler.Register, http.MethodPost, "/api/farmers", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFarmersRegisterDuplicateEmail(t *testing.T) {
	handler := NewFarmersHandler(&fakeFarmersService{err: farmers.ErrEmailTaken}, logger.NewNop())

	body := `{"name":"A","email":"a@b.com"}`
	rec := doRequest(t, handler.Register, http.MethodPost, "/api/farmers", body, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	parsed := decodeEnvelope(t, rec)
	assert.Equal(t, "User with this email already exists", parsed["message"])
}

func TestFarmersGet(t *testing.T) {
	svc := &fakeFarmersService{farmers: map[string]*farmers.Farmer{
		"farmer-1": {ID: "farmer-1", Name: "Wanjiku Kamau"},
	}}
	handler := NewFarmersHandler(svc, logger.NewNop())

	rec := doRequest(t, handler.Get, http.MethodGet, "/api/farmers/farmer-1", "", map[string]string{"id": "farmer-1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler.Get, http.MethodGet, "/api/farmers/missing", "", map[string]string{"id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
