package farmers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutsell/agricredit/internal/contracts"
	"github.com/sproutsell/agricredit/internal/scoring"
	"github.com/sproutsell/agricredit/pkg/logger"
)

type fakeFarmerRepo struct {
	farmers map[string]*Farmer
	emails  map[string]bool
}

func newFakeFarmerRepo() *fakeFarmerRepo {
	return &fakeFarmerRepo{
		farmers: make(map[string]*Farmer),
		emails:  make(map[string]bool),
	}
}

func (f *fakeFarmerRepo) Create(ctx context.Context, farmer *Farmer) error {
	farmer.ID = "farmer-1"
	f.farmers[farmer.ID] = farmer
	f.emails[farmer.Email] = true
	return nil
}

func (f *fakeFarmerRepo) GetByID(ctx context.Context, id string) (*Farmer, error) {
	farmer, ok := f.farmers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return farmer, nil
}

func (f *fakeFarmerRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return f.emails[email], nil
}

type fakePipeline struct {
	scored []string
}

func (f *fakePipeline) Score(ctx context.Context, userID string, raw scoring.RawAssessment) (*contracts.CreditAnalysis, error) {
	f.scored = append(f.scored, userID)
	return &contracts.CreditAnalysis{CreditScore: 80}, nil
}

func TestRegisterFarmerWithAssessmentTriggersScoring(t *testing.T) {
	repo := newFakeFarmerRepo()
	pipeline := &fakePipeline{}
	svc := NewService(repo, pipeline, logger.NewNop())

	farmer, err := svc.Register(context.Background(), RegisterInput{
		Name:  "Wanjiku Kamau",
		Email: "Wanjiku@Example.com",
		Role:  RoleFarmer,
		Assessment: scoring.RawAssessment{
			FarmData: &scoring.RawFarmData{FarmSizeHectares: 10},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "farmer-1", farmer.ID)
	assert.Equal(t, "wanjiku@example.com", farmer.Email) // lowercased
	assert.Equal(t, []string{"farmer-1"}, pipeline.scored)
}

func TestRegisterWithoutAssessmentSkipsScoring(t *testing.T) {
	repo := newFakeFarmerRepo()
	pipeline := &fakePipeline{}
	svc := NewService(repo, pipeline, logger.NewNop())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:  "Wanjiku Kamau",
		Email: "wanjiku@example.com",
	})
	require.NoError(t, err)
	assert.Empty(t, pipeline.scored)
}

func TestRegisterBuyerSkipsScoring(t *testing.T) {
	repo := newFakeFarmerRepo()
	pipeline := &fakePipeline{}
	svc := NewService(repo, pipeline, logger.NewNop())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:  "Otieno Odhiambo",
		Email: "otieno@example.com",
		Role:  "buyer",
		Assessment: scoring.RawAssessment{
			FarmData: &scoring.RawFarmData{FarmSizeHectares: 2},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, pipeline.scored)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newFakeFarmerRepo(), nil, logger.NewNop())

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.com"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "A"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeFarmerRepo()
	svc := NewService(repo, nil, logger.NewNop())

	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.com"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "B", Email: "a@b.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestGetFarmer(t *testing.T) {
	repo := newFakeFarmerRepo()
	svc := NewService(repo, nil, logger.NewNop())

	registered, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.com"})
	require.NoError(t, err)

	farmer, err := svc.Get(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", farmer.Name)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
