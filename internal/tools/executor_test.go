package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pragmas/internal/domain"
	testingpkg "github.com/aristath/pragmas/internal/testing"
)

type mockLogStore struct {
	mock.Mock
}

func (m *mockLogStore) Start(ctx context.Context, entry ExecutionLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockLogStore) Finish(ctx context.Context, id string, status ExecutionStatus, outputJSON, errorMessage string, finishedAt time.Time) error {
	args := m.Called(ctx, id, status, outputJSON, errorMessage, finishedAt)
	return args.Error(0)
}

var user = &domain.Caller{ID: "user-1", Email: "u@example.com", Role: domain.RoleUser}

func newAuditedExecutor(t *testing.T, tools ...Tool) (*Executor, *ExecutionLogRepository) {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "audit")
	t.Cleanup(cleanup)

	registry, err := NewRegistry(tools...)
	require.NoError(t, err)

	repo := NewExecutionLogRepository(db.Conn(), zerolog.Nop())
	return NewExecutor(registry, repo, zerolog.Nop()), repo
}

func onlyLog(t *testing.T, repo *ExecutionLogRepository) ExecutionLog {
	t.Helper()
	logs, err := repo.ListRecent(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	return logs[0]
}

func TestExecute_SuccessWritesOneSucceededLog(t *testing.T) {
	exec, repo := newAuditedExecutor(t, sumTool("math.sum", LevelUser))

	out, err := exec.ExecuteByName(context.Background(), "math.sum", []byte(`{"values":[1,2,3]}`), user)
	require.NoError(t, err)
	assert.Equal(t, sumOutput{Total: 6}, out)

	entry := onlyLog(t, repo)
	assert.Equal(t, StatusSucceeded, entry.Status)
	assert.Equal(t, "math.sum", entry.ToolName)
	assert.Equal(t, "USER", entry.Level)
	assert.Equal(t, "user-1", entry.UserID)
	assert.JSONEq(t, `{"values":[1,2,3]}`, entry.InputJSON)
	assert.JSONEq(t, `{"total":6}`, entry.OutputJSON)
	assert.NotNil(t, entry.FinishedAt)
}

func TestExecute_FailingToolUpdatesLogThenPropagates(t *testing.T) {
	exec, repo := newAuditedExecutor(t, failingTool("math.fail"))

	_, err := exec.ExecuteByName(context.Background(), "math.fail", sumInput{Values: []float64{1}}, user)
	require.ErrorIs(t, err, errBoom)

	entry := onlyLog(t, repo)
	assert.Equal(t, StatusFailed, entry.Status)
	assert.Equal(t, "boom", entry.ErrorMessage)
	assert.Empty(t, entry.OutputJSON)
}

func TestExecute_ValidationFailureFinalizesLogAsFailed(t *testing.T) {
	exec, repo := newAuditedExecutor(t, sumTool("math.sum", LevelUser))

	_, err := exec.ExecuteByName(context.Background(), "math.sum", []byte(`{"values":[]}`), user)
	require.True(t, errors.Is(err, domain.ErrValidation))

	entry := onlyLog(t, repo)
	assert.Equal(t, StatusFailed, entry.Status)
	assert.Contains(t, entry.ErrorMessage, "values")
}

func TestExecute_AuthorizationFailsBeforeLogging(t *testing.T) {
	exec, repo := newAuditedExecutor(t, sumTool("math.user", LevelUser), sumTool("math.admin", LevelAdmin))
	ctx := context.Background()
	raw := []byte(`{"values":[1]}`)

	_, err := exec.ExecuteByName(ctx, "math.user", raw, nil)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, err = exec.ExecuteByName(ctx, "math.admin", raw, user)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	logs, err := repo.ListRecent(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestExecute_PublicToolRunsAnonymously(t *testing.T) {
	exec, repo := newAuditedExecutor(t, sumTool("math.public", LevelPublic))

	_, err := exec.ExecuteByName(context.Background(), "math.public", []byte(`{"values":[2]}`), nil)
	require.NoError(t, err)

	entry := onlyLog(t, repo)
	assert.Empty(t, entry.UserID)
}

func TestExecute_MissingToolIsDependencyMissing(t *testing.T) {
	exec, _ := newAuditedExecutor(t)

	_, err := exec.ExecuteByName(context.Background(), "portfolio.nothing", nil, user)
	assert.True(t, errors.Is(err, domain.ErrDependencyMissing))
}

func TestExecute_AuditStoreFailureDoesNotBlockExecution(t *testing.T) {
	store := new(mockLogStore)
	store.On("Start", mock.Anything, mock.Anything).Return(errors.New("audit db locked"))

	registry, err := NewRegistry(sumTool("math.sum", LevelUser))
	require.NoError(t, err)
	exec := NewExecutor(registry, store, zerolog.Nop())

	out, err := exec.ExecuteByName(context.Background(), "math.sum", sumInput{Values: []float64{4}}, user)
	require.NoError(t, err)
	assert.Equal(t, sumOutput{Total: 4}, out)

	store.AssertNumberOfCalls(t, "Finish", 0)
}

func TestExecute_FinishFailureStillReturnsResult(t *testing.T) {
	store := new(mockLogStore)
	store.On("Start", mock.Anything, mock.Anything).Return(nil)
	store.On("Finish", mock.Anything, mock.Anything, StatusSucceeded, `{"total":4}`, "", mock.Anything).
		Return(errors.New("disk full"))

	registry, err := NewRegistry(sumTool("math.sum", LevelUser))
	require.NoError(t, err)
	exec := NewExecutor(registry, store, zerolog.Nop())

	out, err := exec.ExecuteByName(context.Background(), "math.sum", sumInput{Values: []float64{4}}, user)
	require.NoError(t, err)
	assert.Equal(t, sumOutput{Total: 4}, out)
	store.AssertExpectations(t)
}

func TestRun_TypedOutput(t *testing.T) {
	exec, _ := newAuditedExecutor(t, sumTool("math.sum", LevelUser))

	out, err := Run[sumOutput](context.Background(), exec, "math.sum", sumInput{Values: []float64{1, 1}}, user)
	require.NoError(t, err)
	assert.Equal(t, 2.0, out.Total)

	_, err = Run[string](context.Background(), exec, "math.sum", sumInput{Values: []float64{1}}, user)
	assert.Error(t, err)
}
