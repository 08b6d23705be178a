package postgres_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/log"
	"github.com/zihgir1/BEVM/storage"
	"github.com/zihgir1/BEVM/storage/postgres"
	"github.com/zihgir1/BEVM/storage/postgres/testutil"
)

const migrations = "file://../migrations"

func TestInvalidConnect(t *testing.T) {
	_, err := postgres.NewClient("an invalid connstring", log.NewDefaultLogger("postgres-test"))
	require.NotNil(t, err)
}

func TestQuery(t *testing.T) {
	client := testutil.NewTestClient(t)
	defer client.Close()

	rows, err := client.Query(context.Background(), `
		SELECT * FROM ( VALUES (0),(1),(2) ) AS q;
	`)
	require.Nil(t, err)
	defer rows.Close()

	i := 0
	for rows.Next() {
		var result int
		require.Nil(t, rows.Scan(&result))
		require.Equal(t, i, result)
		i++
	}
	require.Equal(t, 3, i)
}

func TestPublications(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewTestClient(t)
	defer client.Close()

	logger, err := log.NewLogger("postgres-test", io.Discard, log.FmtJSON, log.LevelError)
	require.NoError(t, err)
	require.NoError(t, client.Wipe(ctx))
	require.NoError(t, postgres.Migrate(migrations, testutil.ConnString(t), logger))
	// A second run has nothing to apply.
	require.NoError(t, postgres.Migrate(migrations, testutil.ConnString(t), logger))

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	main := storage.Publication{
		Profile:     common.ProfileMain,
		ChainID:     "chainx",
		GenesisHash: "aa",
		SpecHash:    "bb",
		Frozen:      true,
		Size:        1024,
		CreatedAt:   base,
	}
	require.NoError(t, client.RecordPublication(ctx, &main))
	require.NotEqual(t, uuid.Nil, main.ID)

	dev := storage.Publication{
		Profile:     common.ProfileDevelopment,
		ChainID:     "dev",
		GenesisHash: "cc",
		SpecHash:    "dd",
		Size:        2048,
		CreatedAt:   base.Add(time.Hour),
	}
	require.NoError(t, client.RecordPublication(ctx, &dev))

	all, err := client.Publications(ctx, storage.PublicationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, dev.ID, all[0].ID)
	require.Equal(t, main.ID, all[1].ID)
	require.True(t, all[1].Frozen)
	require.True(t, main.CreatedAt.Equal(all[1].CreatedAt))

	profile := common.ProfileMain
	onlyMain, err := client.Publications(ctx, storage.PublicationFilter{Profile: &profile})
	require.NoError(t, err)
	require.Len(t, onlyMain, 1)
	require.Equal(t, "chainx", onlyMain[0].ChainID)

	paged, err := client.Publications(ctx, storage.PublicationFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	require.Equal(t, main.ID, paged[0].ID)

	bad := storage.Publication{Profile: common.Profile(9), Size: 1}
	require.ErrorIs(t, client.RecordPublication(ctx, &bad), common.ErrUnknownProfile)
}
