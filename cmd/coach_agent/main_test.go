package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/config"
	"github.com/victorzhu443/firstplay-backend/internal/llm"
	"github.com/victorzhu443/firstplay-backend/internal/schemas"
	"github.com/victorzhu443/firstplay-backend/internal/skills"
)

// clearEnv unsets the variables config.Load reads so host settings do not leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"DATABASE_URL", "DATABASE_DRIVER", "SQLITE_PATH", "GEMINI_API_KEY", "LLM_PROVIDER", "PORT", "R2_BUCKET", "RABBITMQ_URL"} {
		t.Setenv(name, "")
	}
}

func TestResolveRunInputs(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name                                    string
		resume, candidateID, job, jobURL, jobID string
		wantErr                                 string
	}{
		{name: "files", resume: "cv.pdf", job: "job.txt"},
		{name: "stored records", candidateID: id, jobID: id},
		{name: "resume and url", resume: "cv.pdf", jobURL: "https://jobs.example.com/1"},
		{name: "no candidate", job: "job.txt", wantErr: "either --resume or --candidate-id"},
		{name: "two candidates", resume: "cv.pdf", candidateID: id, job: "job.txt", wantErr: "mutually exclusive"},
		{name: "no job", resume: "cv.pdf", wantErr: "exactly one of --job"},
		{name: "two jobs", resume: "cv.pdf", job: "job.txt", jobURL: "https://x", wantErr: "exactly one of --job"},
		{name: "bad candidate id", candidateID: "42", jobID: id, wantErr: "invalid --candidate-id"},
		{name: "bad job id", resume: "cv.pdf", jobID: "42", wantErr: "invalid --job-id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := resolveRunInputs(tt.resume, tt.candidateID, tt.job, tt.jobURL, tt.jobID)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.resume, in.resumePath)
			if tt.candidateID != "" {
				assert.Equal(t, tt.candidateID, in.candidateID.String())
			}
		})
	}
}

func TestLLMConfig(t *testing.T) {
	c := llmConfig(config.LLMConfig{
		Provider:    config.ProviderVertex,
		Project:     "my-project",
		Location:    "europe-west1",
		Temperature: 0.3,
		Models:      map[string]string{"advanced": "gemini-exp"},
	})

	assert.Equal(t, llm.ProviderVertex, c.Provider)
	assert.Equal(t, "my-project", c.Project)
	assert.Equal(t, "europe-west1", c.Location)
	assert.InDelta(t, 0.3, c.Temperature, 1e-6)
	assert.Equal(t, "gemini-exp", c.GetModel(llm.TierAdvanced))
	assert.Equal(t, llm.DefaultConfig().GetModel(llm.TierLite), c.GetModel(llm.TierLite))
}

func TestNewLLMFactory_RequiresGeminiKey(t *testing.T) {
	_, err := newLLMFactory(config.LLMConfig{Provider: config.ProviderGemini})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	f, err := newLLMFactory(config.LLMConfig{Provider: config.ProviderVertex, Project: "p"})
	require.NoError(t, err)
	assert.NotNil(t, f)
}

func TestNewFetcher(t *testing.T) {
	f := newFetcher(config.FetchConfig{TimeoutSeconds: 3}, nil)
	assert.Nil(t, f.Renderer)
	assert.Equal(t, "3s", f.Options.Timeout.String())

	f = newFetcher(config.FetchConfig{UseBrowser: true}, nil)
	assert.NotNil(t, f.Renderer)
}

func TestNewBlobs_DisabledWithoutBucket(t *testing.T) {
	blobs, err := newBlobs(context.Background(), config.StorageConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, blobs)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	st, err := openStore(ctx, config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "coach.db")})
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(ctx))

	_, err = openStore(ctx, config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "coach.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7000\ndatabase:\n  path: file.db\n"), 0600))

	old := configPath
	configPath = path
	t.Cleanup(func() { configPath = old })

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("port", 0, "")
	cmd.Flags().String("db-path", "", "")
	require.NoError(t, cmd.Flags().Set("db-path", filepath.Join(dir, "flag.db")))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port, "unset flags keep the file value")
	assert.Equal(t, filepath.Join(dir, "flag.db"), cfg.Database.Path)
	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearEnv(t)
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("db-driver", "", "")
	require.NoError(t, cmd.Flags().Set("db-driver", "postgres"))

	_, err := loadConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url")
}

func TestGapCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"gap", "--candidate", "JavaScript,Go", "--required", "js,AWS", "--preferred", "Terraform"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var gap skills.GapResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &gap))
	assert.Equal(t, []string{"js"}, gap.Overlapping)
	assert.Equal(t, []string{"AWS"}, gap.MissingRequired)
	assert.Equal(t, []string{"Terraform"}, gap.MissingPreferred)
	assert.Equal(t, []string{}, gap.WeakSkills)
}

func TestReadGapRequest(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "ok.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"candidate_skills":["go"],"required_skills":["Go","SQL"]}`), 0600))
	req, err := readGapRequest(valid)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, req.RequiredSkills)
	assert.Nil(t, req.PreferredSkills)

	invalid := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"candidate_skills":"go","extra":1}`), 0600))
	_, err = readGapRequest(invalid)
	var verr *schemas.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 2)

	_, err = readGapRequest(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestMigrateCommand_SQLite(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "data", "coach.db")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"migrate", "--db-driver", "sqlite", "--db-path", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Schema applied (sqlite)")
	assert.FileExists(t, path)
}
