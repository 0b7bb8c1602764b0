package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tradejournal/internal/domain"
	"tradejournal/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "journal-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}

	return repo, cleanup
}

func sampleTrade(id string) *domain.Trade {
	return &domain.Trade{
		ID:           id,
		SymbolName:   "AAPL",
		PositionType: domain.Buy,
		OpenDate:     "2024-03-10",
		OpenTime:     "09:30",
		EntryPrice:   100,
		Quantity:     10,
		Rating:       4,
		StrategyID:   "s1",
		AppliedOpenRules: []domain.Rule{
			{ID: "r1", Rule: "trend up", Priority: domain.PriorityHigh},
		},
		OpenCustomFields: map[string]string{"setup": "breakout"},
	}
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}

func TestRepository_CreateAndFindTrade(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*Repository) error
		trade   *domain.Trade
		wantErr error
	}{
		{
			name:  "open trade",
			trade: sampleTrade("t1"),
		},
		{
			name: "trade with close events",
			trade: func() *domain.Trade {
				tr := sampleTrade("t2")
				tr.CloseEvents = []domain.CloseEvent{
					{ID: "e2", Date: "2024-03-12", Time: "10:00", QuantitySold: 3, SellPrice: 110, Result: 30},
					{ID: "e1", Date: "2024-03-11", Time: "10:00", QuantitySold: 2, SellPrice: 105, Result: 10},
				}
				return tr
			}(),
		},
		{
			name: "duplicate id",
			setup: func(r *Repository) error {
				return r.CreateTrade(context.Background(), sampleTrade("dup"))
			},
			trade:   sampleTrade("dup"),
			wantErr: ports.ErrDuplicateEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, cleanup := setupTestDB(t)
			defer cleanup()
			ctx := context.Background()

			if tt.setup != nil {
				require.NoError(t, tt.setup(repo))
			}

			err := repo.CreateTrade(ctx, tt.trade)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			found, err := repo.FindTradeByID(ctx, tt.trade.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, tt.trade.SymbolName, found.SymbolName)
			assert.Equal(t, tt.trade.PositionType, found.PositionType)
			assert.Equal(t, tt.trade.EntryPrice, found.EntryPrice)
			assert.Equal(t, tt.trade.Quantity, found.Quantity)
			assert.Equal(t, tt.trade.StrategyID, found.StrategyID)
			assert.Equal(t, tt.trade.AppliedOpenRules, found.AppliedOpenRules)
			assert.Equal(t, tt.trade.OpenCustomFields, found.OpenCustomFields)
			assert.Len(t, found.CloseEvents, len(tt.trade.CloseEvents))
			for i, ev := range tt.trade.CloseEvents {
				// insertion order is preserved
				assert.Equal(t, ev, found.CloseEvents[i])
			}
		})
	}
}

func TestRepository_FindTradeByID_Missing(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	found, err := repo.FindTradeByID(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestRepository_UpdateTrade(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	tr := sampleTrade("t1")
	tr.CloseEvents = []domain.CloseEvent{{ID: "e1", Date: "2024-03-11", QuantitySold: 2, SellPrice: 105, Result: 10}}
	require.NoError(t, repo.CreateTrade(ctx, tr))

	tr.CloseDate = "2024-03-15"
	tr.CloseTime = "16:00"
	tr.SellPrice = 120
	tr.QuantitySold = 8
	tr.Result = "160"
	tr.CloseEvents = append(tr.CloseEvents, domain.CloseEvent{ID: "e2", Date: "2024-03-13", QuantitySold: 1, SellPrice: 108, Result: 8})
	require.NoError(t, repo.UpdateTrade(ctx, tr))

	found, err := repo.FindTradeByID(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsClosed())
	assert.Equal(t, "160", found.Result)
	require.Len(t, found.CloseEvents, 2)
	assert.Equal(t, "e1", found.CloseEvents[0].ID)
	assert.Equal(t, "e2", found.CloseEvents[1].ID)

	err = repo.UpdateTrade(ctx, sampleTrade("missing"))
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_DeleteTrade(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	tr := sampleTrade("t1")
	tr.CloseEvents = []domain.CloseEvent{{ID: "e1", Date: "2024-03-11", QuantitySold: 2, SellPrice: 105, Result: 10}}
	require.NoError(t, repo.CreateTrade(ctx, tr))

	require.NoError(t, repo.DeleteTrade(ctx, "t1"))
	found, err := repo.FindTradeByID(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, found)

	var n int
	require.NoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM close_events WHERE trade_id = 't1'`).Scan(&n))
	assert.Zero(t, n, "close events cascade")

	assert.ErrorIs(t, repo.DeleteTrade(ctx, "t1"), ports.ErrNotFound)
}

func TestRepository_FindAllTrades(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	older := sampleTrade("old")
	older.OpenDate = "2024-01-01"
	newer := sampleTrade("new")
	newer.OpenDate = "2024-02-01"
	newer.CloseEvents = []domain.CloseEvent{{ID: "e1", Date: "2024-02-02", QuantitySold: 1, SellPrice: 101, Result: 1}}

	require.NoError(t, repo.CreateTrade(ctx, older))
	require.NoError(t, repo.CreateTrade(ctx, newer))

	all, err := repo.FindAllTrades(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0].ID)
	assert.Len(t, all[0].CloseEvents, 1)
	assert.Equal(t, "old", all[1].ID)
	assert.Empty(t, all[1].CloseEvents)
}

func TestRepository_Capital(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	got, err := repo.GetCapital(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	require.NoError(t, repo.SetCapital(ctx, "10000"))
	require.NoError(t, repo.SetCapital(ctx, "12500.50"))

	got, err = repo.GetCapital(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12500.50", got)
}

func TestRepository_CustomFields(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	names, err := repo.GetCustomFieldNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names.OpenFields)
	assert.Empty(t, names.CloseFields)

	require.NoError(t, repo.AddCustomFieldName(ctx, domain.FieldKindOpen, "setup"))
	require.NoError(t, repo.AddCustomFieldName(ctx, domain.FieldKindOpen, "setup"))
	require.NoError(t, repo.AddCustomFieldName(ctx, domain.FieldKindClose, "exit reason"))

	names, err = repo.GetCustomFieldNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"setup"}, names.OpenFields)
	assert.Equal(t, []string{"exit reason"}, names.CloseFields)

	require.NoError(t, repo.RemoveCustomFieldName(ctx, domain.FieldKindOpen, "setup"))
	assert.ErrorIs(t, repo.RemoveCustomFieldName(ctx, domain.FieldKindOpen, "setup"), ports.ErrNotFound)

	names, err = repo.GetCustomFieldNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names.OpenFields)
	assert.Equal(t, []string{"exit reason"}, names.CloseFields)
}

func TestRepository_Strategies(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	s := &domain.Strategy{
		ID:                 "s1",
		Name:               "Breakout",
		OpenPositionRules:  []domain.Rule{{ID: "r1", Rule: "volume spike", Priority: domain.PriorityHigh}},
		ClosePositionRules: []domain.Rule{{ID: "r2", Rule: "trail stop", Priority: domain.PriorityLow}},
	}
	require.NoError(t, repo.CreateStrategy(ctx, s))
	assert.ErrorIs(t, repo.CreateStrategy(ctx, s), ports.ErrDuplicateEntry)

	found, err := repo.FindStrategyByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, s, found)

	missing, err := repo.FindStrategyByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.CreateStrategy(ctx, &domain.Strategy{ID: "s0", Name: "Alpha"}))
	all, err := repo.FindAllStrategies(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha", all[0].Name)
	assert.Empty(t, all[0].OpenPositionRules)
}

func TestRepository_ContextErrors(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()

	tests := []struct {
		name string
		ctx  context.Context
		want error
	}{
		{name: "canceled", ctx: canceled, want: ports.ErrContextCanceled},
		{name: "deadline exceeded", ctx: expired, want: ports.ErrTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.FindAllTrades(tt.ctx)
			assert.ErrorIs(t, err, tt.want)

			err = repo.CreateTrade(tt.ctx, sampleTrade("ctx-"+tt.name))
			assert.ErrorIs(t, err, tt.want)

			_, err = repo.GetCapital(tt.ctx)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	trades, err := repo.FindAllTrades(context.Background())
	require.NoError(t, err)
	assert.Empty(t, trades)
}
