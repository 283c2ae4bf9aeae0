package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/fleet/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		config  Config
		wantErr bool
	}{
		{
			name: "valid oauth config",
			config: Config{
				ClientID:      "test-client",
				ClientSecret:  "test-secret",
				RefreshToken:  "test-token",
				BatchSize:     100,
				RetryAttempts: 3,
				RetryDelay:    time.Second,
			},
		},
		{
			name: "valid service account config",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
				RetryAttempts:      3,
				RetryDelay:         time.Second,
			},
		},
		{
			name: "partial oauth credentials",
			config: Config{
				ClientID:     "test-client",
				RefreshToken: "test-token",
				BatchSize:    100,
			},
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "multiple auth methods",
			config: Config{
				ClientID:           "test-client",
				ClientSecret:       "test-secret",
				RefreshToken:       "test-token",
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
			},
			wantErr: true,
			errMsg:  "multiple authentication methods configured",
		},
		{
			name: "invalid batch size",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          0,
			},
			wantErr: true,
			errMsg:  "batch size must be positive",
		},
		{
			name: "negative retry attempts",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
				RetryAttempts:      -1,
			},
			wantErr: true,
			errMsg:  "retry attempts cannot be negative",
		},
		{
			name: "negative retry delay",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
				RetryDelay:         -time.Second,
			},
			wantErr: true,
			errMsg:  "retry delay cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/path/to/key.json")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "env-id")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_NAME", "Marina Books")

	config := DefaultConfig()
	config.SpreadsheetID = "configured-id"
	config.LoadFromEnv()

	assert.Equal(t, "/path/to/key.json", config.ServiceAccountPath)
	assert.Equal(t, "configured-id", config.SpreadsheetID, "explicit values win")
	assert.Equal(t, "Marina Books", config.SpreadsheetName)
	assert.NoError(t, config.Validate())
}

func TestConfig_LoadFromEnv_ApplicationCredentials(t *testing.T) {
	for _, key := range []string{"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN"} {
		t.Setenv(key, "")
	}
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/etc/gcloud/fleet.json")

	config := DefaultConfig()
	config.LoadFromEnv()

	assert.Equal(t, "/etc/gcloud/fleet.json", config.ServiceAccountPath)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.True(t, config.EnableFormatting)
	assert.Equal(t, DefaultSpreadsheetName, config.SpreadsheetName)
	assert.Equal(t, 1000, config.BatchSize)
	assert.Equal(t, 3, config.RetryAttempts)
	assert.Equal(t, time.Second, config.RetryDelay)
}

func TestMockWriter(t *testing.T) {
	mock := NewMockWriter()
	var w ReportWriter = mock
	fleet := model.NewFleet()

	require.NoError(t, w.Write(context.Background(), fleet))
	assert.Equal(t, 1, mock.WriteCallCount)
	assert.Same(t, fleet, mock.LastFleet)

	boom := errors.New("quota exceeded")
	mock.SetWriteError(boom)
	assert.ErrorIs(t, w.Write(context.Background(), fleet), boom)
	assert.Equal(t, 2, mock.WriteCallCount)
}

type recordedCall struct {
	method string
	path   string
	query  string
	body   []byte
}

// fakeSheetsAPI answers the Sheets endpoints the writer uses and records
// each request.
func fakeSheetsAPI(t *testing.T) (*Writer, *[]recordedCall) {
	t.Helper()
	var mu sync.Mutex
	var calls []recordedCall

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recordedCall{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: body})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"spreadsheetId":"club-sheet","sheets":[{"properties":{"title":"Fleet","sheetId":5}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	service, err := sheets.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	config := DefaultConfig()
	config.SpreadsheetID = "club-sheet"
	config.RetryAttempts = 1

	return &Writer{
		service: service,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		config:  config,
	}, &calls
}

func TestWriter_WriteKeepsTextLiteral(t *testing.T) {
	writer, calls := fakeSheetsAPI(t)

	formulaName, err := model.NewBoat(model.CategoryPower, "=1+1", 2020, "-Wind", 20, model.Cents(100, 0), model.DefaultBounds())
	require.NoError(t, err)

	require.NoError(t, writer.Write(context.Background(), model.NewFleet(formulaName)))

	var update *recordedCall
	for i, c := range *calls {
		if c.method == http.MethodPut && strings.Contains(c.path, "/values/") {
			update = &(*calls)[i]
		}
	}
	require.NotNil(t, update, "values were written")
	assert.Contains(t, update.query, "valueInputOption=RAW")

	var sent sheets.ValueRange
	require.NoError(t, json.Unmarshal(update.body, &sent))
	require.Len(t, sent.Values, headerRows+2)
	assert.Equal(t, "=1+1", sent.Values[headerRows][1])
	assert.Equal(t, "-Wind", sent.Values[headerRows][3])
}
