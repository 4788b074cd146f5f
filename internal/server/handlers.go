package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/pipeline"
	"github.com/victorzhu443/firstplay-backend/internal/skills"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// maxUploadBytes bounds resume uploads.
const maxUploadBytes = 10 << 20

// SubmissionResponse is returned after a resume upload.
type SubmissionResponse struct {
	ResumeID       string `json:"resume_id"`
	RawTextPreview string `json:"raw_text_preview"`
}

// JobSubmissionResponse is returned after a job description is stored.
type JobSubmissionResponse struct {
	JobID       string `json:"job_id"`
	TextPreview string `json:"text_preview"`
}

// AnalysisResponse is returned by /api/analyze.
type AnalysisResponse struct {
	AnalysisID  string           `json:"analysis_id"`
	ResumeID    string           `json:"resume_id"`
	JobID       string           `json:"job_id"`
	GapAnalysis skills.GapResult `json:"gap_analysis"`
}

// ProjectsResponse is returned by /api/projects.
type ProjectsResponse struct {
	ProjectPlanID string              `json:"project_plan_id"`
	AnalysisID    string              `json:"analysis_id"`
	Projects      []types.ProjectIdea `json:"projects"`
}

// ImproveResponse is returned by /api/resume/improve.
type ImproveResponse struct {
	ImprovedResumeID string                 `json:"improved_resume_id"`
	ResumeID         string                 `json:"resume_id"`
	JobID            string                 `json:"job_id"`
	ImprovedResume   types.RewrittenProfile `json:"improved_resume"`
}

// PipelineResponse is the result of a full pipeline run.
type PipelineResponse struct {
	ResumeID         string                  `json:"resume_id"`
	JobID            string                  `json:"job_id"`
	RunID            *string                 `json:"run_id,omitempty"`
	AnalysisID       *string                 `json:"analysis_id"`
	ProjectPlanID    *string                 `json:"project_plan_id"`
	ImprovedResumeID *string                 `json:"improved_resume_id"`
	GapAnalysis      *skills.GapResult       `json:"gap_analysis"`
	Projects         []types.ProjectIdea     `json:"projects"`
	ImprovedResume   *types.RewrittenProfile `json:"improved_resume"`
}

// EnqueueResponse is returned by /api/pipeline/enqueue.
type EnqueueResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid upload: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read upload: "+err.Error())
		return
	}

	sub, err := s.coach.UploadCandidate(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, SubmissionResponse{ResumeID: sub.ID.String(), RawTextPreview: sub.Preview})
}

func (s *Server) handleParseResume(w http.ResponseWriter, r *http.Request) {
	id, ok := s.queryID(w, r, "resume_id")
	if !ok {
		return
	}
	parsed, err := s.coach.ParseCandidate(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"resume_id": id.String(), "parsed_data": parsed})
}

func (s *Server) handleImproveResume(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.queryID(w, r, "resume_id")
	if !ok {
		return
	}
	jobID, ok := s.queryID(w, r, "job_id")
	if !ok {
		return
	}

	record, err := s.coach.Rewrite(r.Context(), candidateID, jobID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ImproveResponse{
		ImprovedResumeID: record.ID.String(),
		ResumeID:         candidateID.String(),
		JobID:            jobID.String(),
		ImprovedResume:   record.Profile,
	})
}

func (s *Server) handleSubmitJobURL(w http.ResponseWriter, r *http.Request) {
	var req types.JobURLRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	sub, err := s.coach.SubmitJobURL(r.Context(), req.URL)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, JobSubmissionResponse{JobID: sub.ID.String(), TextPreview: sub.Preview})
}

func (s *Server) handleSubmitJobText(w http.ResponseWriter, r *http.Request) {
	var req types.JobTextRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	sub, err := s.coach.SubmitJobText(r.Context(), req.Text)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, JobSubmissionResponse{JobID: sub.ID.String(), TextPreview: sub.Preview})
}

func (s *Server) handleParseJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.queryID(w, r, "job_id")
	if !ok {
		return
	}
	parsed, err := s.coach.ParseJob(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"job_id": id.String(), "parsed_data": parsed})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	candidateID, jobID := uuid.MustParse(req.CandidateID), uuid.MustParse(req.JobID)
	record, err := s.coach.Analyze(r.Context(), candidateID, jobID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, AnalysisResponse{
		AnalysisID:  record.ID.String(),
		ResumeID:    candidateID.String(),
		JobID:       jobID.String(),
		GapAnalysis: record.Analysis,
	})
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	analysisID, ok := s.queryID(w, r, "analysis_id")
	if !ok {
		return
	}
	record, err := s.coach.GenerateProjects(r.Context(), analysisID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ProjectsResponse{
		ProjectPlanID: record.ID.String(),
		AnalysisID:    analysisID.String(),
		Projects:      record.Plan.Projects,
	})
}

func (s *Server) handleExportAnalysis(w http.ResponseWriter, r *http.Request) {
	analysisID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid analysis ID format")
		return
	}

	var buf bytes.Buffer
	if err := s.coach.ExportGapReport(r.Context(), analysisID, &buf); err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="gap-analysis-`+analysisID.String()+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("failed to write export", zap.Error(err))
	}
}

func (s *Server) handlePipelineRun(w http.ResponseWriter, r *http.Request) {
	candidateID, jobID, ok := s.decodeRunRequest(w, r)
	if !ok {
		return
	}

	state, err := s.coach.RunPipeline(r.Context(), candidateID, jobID, nil)
	if err != nil {
		s.pipelineFailed(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newPipelineResponse(state))
}

func (s *Server) handlePipelineRunStream(w http.ResponseWriter, r *http.Request) {
	candidateID, jobID, ok := s.decodeRunRequest(w, r)
	if !ok {
		return
	}

	stream, err := newProgressStream(w, s.logger)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	state, err := s.coach.RunPipeline(r.Context(), candidateID, jobID, stream.Step)
	if err != nil {
		stream.Fail(pipelineFailureMessage(err))
		return
	}
	stream.Result(newPipelineResponse(state))
	stream.Complete(state.RunID)
}

func (s *Server) handlePipelineEnqueue(w http.ResponseWriter, r *http.Request) {
	candidateID, jobID, ok := s.decodeRunRequest(w, r)
	if !ok {
		return
	}

	runID, err := s.coach.Enqueue(r.Context(), candidateID, jobID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, EnqueueResponse{RunID: runID.String(), Status: "queued"})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return
	}

	status, err := s.coach.GetRun(r.Context(), runID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, status)
}

func (s *Server) pipelineFailed(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("pipeline run failed", zap.String("path", r.URL.Path), zap.Error(err))
	s.errorResponse(w, http.StatusInternalServerError, pipelineFailureMessage(err))
}

func pipelineFailureMessage(err error) string {
	var runErr *pipeline.RunError
	if errors.As(err, &runErr) {
		err = runErr.Err
	}
	return "Pipeline execution failed: " + err.Error()
}

func newPipelineResponse(st *pipeline.State) PipelineResponse {
	resp := PipelineResponse{
		ResumeID:         st.CandidateID.String(),
		JobID:            st.JobID.String(),
		AnalysisID:       idString(st.AnalysisID),
		ProjectPlanID:    idString(st.ProjectPlanID),
		ImprovedResumeID: idString(st.ProfileID),
		GapAnalysis:      st.Gap,
		Projects:         st.Projects,
		ImprovedResume:   st.Profile,
	}
	if st.RunID != uuid.Nil {
		resp.RunID = idString(&st.RunID)
	}
	if resp.Projects == nil {
		resp.Projects = []types.ProjectIdea{}
	}
	return resp
}

func idString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) decodeRunRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	var req types.PipelineRunRequest
	if !s.decodeJSON(w, r, &req) {
		return uuid.Nil, uuid.Nil, false
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return uuid.Nil, uuid.Nil, false
	}
	return uuid.MustParse(req.CandidateID), uuid.MustParse(req.JobID), true
}

// queryID reads a required UUID query parameter, writing a 400 when it is absent or malformed.
func (s *Server) queryID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		s.errorResponse(w, http.StatusBadRequest, (&ErrValidation{Field: name, Message: "is required"}).Error())
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, (&ErrValidation{Field: name, Message: "must be a UUID"}).Error())
		return uuid.Nil, false
	}
	return id, true
}
