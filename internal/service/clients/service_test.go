package clients

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"client_registry/internal/domain"
	"client_registry/internal/domain/mocks"
	"client_registry/internal/dto"
	"client_registry/internal/model"
	"client_registry/internal/query"
	"client_registry/internal/repository/memory"
)

// validCnpjs - валидные cnpj для тестов. Для больших наборов используется cnpjFor.
var validCnpjs = []string{"11222333000181", "11444777000161", "04252011000110"}

// cnpjFor строит валидный cnpj из номера n.
func cnpjFor(n int) string {
	base := fmt.Sprintf("%08d0001", n+10000000)
	d1 := checkDigit(base, []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
	d2 := checkDigit(base+d1, []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
	return base + d1 + d2
}

func checkDigit(digits string, weights []int) string {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	r := sum % 11
	if r < 2 {
		return "0"
	}
	return fmt.Sprint(11 - r)
}

func input(name, cnpj string) dto.CreateClient {
	return dto.CreateClient{
		Name: name, Cnpj: cnpj, Cep: "01234567", Address: "Rua das Flores", Number: "10",
		Neighborhood: "Centro", City: "São Paulo", State: "SP", Sector: "Technology",
	}
}

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	service *Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.service = NewService(memory.NewClientRepository(), zaptest.NewLogger(s.T()))
}

func (s *ServiceSuite) create(in dto.CreateClient) model.PublicClient {
	c, err := s.service.Create(s.ctx, in)
	s.Require().NoError(err)
	return c
}

func (s *ServiceSuite) TestCreateAndFind() {
	in := input("Acme LTDA", "11.222.333/0001-81")
	in.Email = "contato@acme.com"
	created := s.create(in)

	s.NotEmpty(created.ID)
	s.Equal("11222333000181", created.Cnpj)
	s.False(created.CreatedAt.IsZero())

	byID, err := s.service.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Acme LTDA", byID.Name)

	byCnpj, err := s.service.FindByCnpj(s.ctx, "11.222.333/0001-81")
	s.Require().NoError(err)
	s.Equal(created.ID, byCnpj.ID)

	byEmail, err := s.service.FindByEmail(s.ctx, "contato@acme.com")
	s.Require().NoError(err)
	s.Equal(created.ID, byEmail.ID)

	s.True(s.service.ExistsByEmail(s.ctx, "contato@acme.com"))
	s.True(s.service.ExistsByCnpj(s.ctx, "11222333000181"))
	s.False(s.service.ExistsByPhone(s.ctx, "11999999999"))
}

func (s *ServiceSuite) TestCreateDuplicateEmailIsConflict() {
	first := input("Acme", validCnpjs[0])
	first.Email = "dup@example.com"
	s.create(first)

	second := input("Other", validCnpjs[1])
	second.Email = "dup@example.com"
	_, err := s.service.Create(s.ctx, second)

	s.True(domain.HasCode(err, domain.CodeConflict))
	var derr *domain.Error
	s.Require().True(errors.As(err, &derr))
	s.Equal([]domain.FieldError{{Field: "email", Message: "This email is already registered"}}, derr.Fields)

	n, err := s.service.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}

func (s *ServiceSuite) TestUpdateKeepsOwnEmail() {
	in := input("Acme", validCnpjs[0])
	in.Email = "own@example.com"
	created := s.create(in)

	updated, err := s.service.Update(s.ctx, created.ID, dto.UpdateClient{Email: "own@example.com", City: "Recife"})
	s.Require().NoError(err)
	s.Equal("Recife", updated.City)
	s.Equal("own@example.com", *updated.Email)
	s.Equal("Acme", updated.Name)
}

func (s *ServiceSuite) TestUpdateEmailOfAnotherClient() {
	a := input("A", validCnpjs[0])
	a.Email = "a@example.com"
	s.create(a)
	b := s.create(input("B", validCnpjs[1]))

	_, err := s.service.Update(s.ctx, b.ID, dto.UpdateClient{Email: "a@example.com"})
	s.True(domain.HasCode(err, domain.CodeConflict))
}

func (s *ServiceSuite) TestUpdateMissing() {
	_, err := s.service.Update(s.ctx, "", dto.UpdateClient{City: "Recife"})
	s.True(domain.HasCode(err, domain.CodeMissingArgument))

	_, err = s.service.Update(s.ctx, "unknown", dto.UpdateClient{City: "Recife"})
	s.True(domain.HasCode(err, domain.CodeNotFound))
}

func (s *ServiceSuite) TestDeleteThenFind() {
	created := s.create(input("Acme", validCnpjs[0]))

	s.Require().NoError(s.service.Delete(s.ctx, created.ID))

	_, err := s.service.FindByID(s.ctx, created.ID)
	s.True(domain.HasCode(err, domain.CodeNotFound))
	s.True(domain.HasCode(s.service.Delete(s.ctx, created.ID), domain.CodeNotFound))

	// cnpj удалённого клиента можно зарегистрировать снова
	s.create(input("Acme again", validCnpjs[0]))
}

func (s *ServiceSuite) TestFindManyPaging() {
	for i := 0; i < 25; i++ {
		s.create(input(fmt.Sprintf("Client %02d", i), cnpjFor(i)))
	}

	page, err := s.service.FindMany(s.ctx, query.Options{Page: 2, Limit: 10})
	s.Require().NoError(err)
	s.Len(page.Data, 10)
	s.Equal(int64(25), page.Total)
	s.Equal(3, page.TotalPages)
	s.Equal(2, page.Page)
	s.Equal("createdAt", page.Sort)
	s.Equal("asc", page.OrderBy)

	last, err := s.service.FindMany(s.ctx, query.Options{Page: 3, Limit: 10})
	s.Require().NoError(err)
	s.Len(last.Data, 5)

	empty, err := s.service.FindMany(s.ctx, query.Options{Page: 4, Limit: 10})
	s.Require().NoError(err)
	s.Empty(empty.Data)
	s.NotNil(empty.Data)
}

func (s *ServiceSuite) TestFindManySearch() {
	joao := s.create(input("João Comércio", validCnpjs[0]))
	s.create(input("Maria Ltda", validCnpjs[1]))

	page, err := s.service.FindMany(s.ctx, query.Options{Search: "joão"})
	s.Require().NoError(err)
	s.Require().Len(page.Data, 1)
	s.Equal(joao.ID, page.Data[0].ID)
	s.Equal(int64(1), page.Total)
}

func (s *ServiceSuite) TestFindManyInvalidOptions() {
	_, err := s.service.FindMany(s.ctx, query.Options{Sort: "password", Where: map[string]string{"id": "x"}})

	var derr *domain.Error
	s.Require().True(errors.As(err, &derr))
	s.Equal(domain.CodeValidation, derr.Code)
	s.Len(derr.Fields, 2)
}

func (s *ServiceSuite) TestFindManyOversizedPagingIsRejected() {
	s.create(input("Acme", validCnpjs[0]))
	s.create(input("Beta", validCnpjs[1]))

	for _, opts := range []query.Options{
		{Page: 3, Limit: 1 << 62},
		{Limit: math.MaxInt},
		{Page: math.MaxInt, Limit: query.MaxLimit},
	} {
		_, err := s.service.FindMany(s.ctx, opts)
		s.True(domain.HasCode(err, domain.CodeValidation), "opts %+v: %v", opts, err)
	}

	page, err := s.service.FindMany(s.ctx, query.Options{Limit: query.MaxLimit})
	s.Require().NoError(err)
	s.Len(page.Data, 2)
	s.Equal(1, page.TotalPages)
}

func (s *ServiceSuite) TestConcurrentCreatesSameCnpj() {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.service.Create(s.ctx, input(fmt.Sprintf("c%d", i), validCnpjs[2]))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case domain.HasCode(err, domain.CodeConflict):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	s.Equal(1, ok)
	s.Equal(7, conflicts)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func newMockService(t *testing.T) (*Service, *mocks.MockClientRepo) {
	t.Helper()
	repo := mocks.NewMockClientRepo(gomock.NewController(t))
	return NewService(repo, zaptest.NewLogger(t)), repo
}

func TestFindByEmptyKeyDoesNotTouchStorage(t *testing.T) {
	service, _ := newMockService(t)
	ctx := context.Background()

	_, err := service.FindByID(ctx, "")
	assert.True(t, domain.HasCode(err, domain.CodeMissingArgument))
	_, err = service.FindByEmail(ctx, "")
	assert.True(t, domain.HasCode(err, domain.CodeMissingArgument))
	_, err = service.FindByCnpj(ctx, "./-")
	assert.True(t, domain.HasCode(err, domain.CodeMissingArgument))
	_, err = service.FindByPhone(ctx, "")
	assert.True(t, domain.HasCode(err, domain.CodeMissingArgument))
	assert.True(t, domain.HasCode(service.Delete(ctx, ""), domain.CodeMissingArgument))
}

func TestFindByIDNotFoundAfterOneLookup(t *testing.T) {
	service, repo := newMockService(t)
	repo.EXPECT().FindByID(gomock.Any(), "nonexistent").Return(nil, domain.ErrNotFound).Times(1)

	_, err := service.FindByID(context.Background(), "nonexistent")
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}

func TestCreateSucceedsWhenUniquenessCheckFails(t *testing.T) {
	service, repo := newMockService(t)
	storageDown := errors.New("connection reset")
	repo.EXPECT().FindByEmail(gomock.Any(), "a@example.com").Return(nil, storageDown)
	repo.EXPECT().FindByCnpj(gomock.Any(), validCnpjs[0]).Return(nil, storageDown)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *model.Client) error {
		c.ID = "new-id"
		return nil
	})

	in := input("Acme", validCnpjs[0])
	in.Email = "a@example.com"
	created, err := service.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "new-id", created.ID)
}

func TestCreateMapsStorageUniqueViolation(t *testing.T) {
	service, repo := newMockService(t)
	repo.EXPECT().FindByCnpj(gomock.Any(), gomock.Any()).Return(nil, domain.ErrNotFound)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&domain.UniqueViolationError{Field: model.FieldCnpj, Err: errors.New("23505")})

	_, err := service.Create(context.Background(), input("Acme", validCnpjs[0]))

	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, domain.CodeConflict, derr.Code)
	assert.Equal(t, []domain.FieldError{{Field: "cnpj", Message: "CNPJ is already registered"}}, derr.Fields)
}

func TestInternalErrorsPropagate(t *testing.T) {
	service, repo := newMockService(t)
	boom := errors.New("boom")
	repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(int64(0), boom)
	repo.EXPECT().FindMany(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	_, err := service.FindMany(context.Background(), query.Options{})
	assert.ErrorIs(t, err, boom)
	var derr *domain.Error
	assert.False(t, errors.As(err, &derr))
}

func TestFindManyPassesBuiltQuery(t *testing.T) {
	service, repo := newMockService(t)
	repo.EXPECT().Count(gomock.Any(), query.Predicate{
		Equals: []query.Condition{{Field: model.FieldCnpj, Value: "11222333000181"}},
	}).Return(int64(11), nil)
	repo.EXPECT().FindMany(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, q query.Query) ([]model.Client, error) {
		assert.Equal(t, 5, q.Offset)
		assert.Equal(t, 5, q.Limit)
		assert.True(t, q.Desc)
		assert.Equal(t, model.FieldName, q.Sort)
		return []model.Client{{ID: "x"}}, nil
	})

	page, err := service.FindMany(context.Background(), query.Options{
		Page: 2, Limit: 5, Sort: "name", OrderBy: "desc",
		Where: map[string]string{"cnpj": "11.222.333/0001-81"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Data, 1)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 10))
	assert.Equal(t, 1, totalPages(10, 10))
	assert.Equal(t, 3, totalPages(25, 10))
	assert.Equal(t, 0, totalPages(5, 0))
	assert.Equal(t, 1, totalPages(2, math.MaxInt))
	assert.Equal(t, 2, totalPages(math.MaxInt64, math.MaxInt64/2+1))
}
