package client

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"alfredoptarigan/intelliapply/internal/document"
	"alfredoptarigan/intelliapply/internal/history"
	"alfredoptarigan/intelliapply/internal/models"
)

type MakerAPI interface {
	IngestResume(ctx context.Context, filename string, content io.Reader) (*models.IngestResponse, error)
	AnalyzeGaps(ctx context.Context, resume *models.ResumeSchema, jobDescription string) (*models.GapAnalysis, error)
	GenerateTailored(ctx context.Context, resume *models.ResumeSchema, jobDescription string, answers map[string]string) (*models.ResumeSchema, error)
	RenderResumePDF(ctx context.Context, resume *models.ResumeSchema) ([]byte, error)
	ResumeCoverLetter(ctx context.Context, resume *models.ResumeSchema, jobDescription string) (string, error)
	RenderCoverLetterPDF(ctx context.Context, resume *models.ResumeSchema, letter string) ([]byte, error)
	ScrapePage(ctx context.Context, url string) (*models.ScrapedJob, error)
}

// HistoryRecorder keeps a record of generated applications.
type HistoryRecorder interface {
	Add(ctx context.Context, e history.Entry) (history.Entry, error)
}

// Stage is the last step of the resume maker that completed.
type Stage int

const (
	StageNone Stage = iota
	StageUploaded
	StageAnalyzed
	StageAnswered
	StageGenerated
	StageLetterWritten
)

func (s Stage) String() string {
	switch s {
	case StageUploaded:
		return "uploaded"
	case StageAnalyzed:
		return "analyzed"
	case StageAnswered:
		return "answered"
	case StageGenerated:
		return "generated"
	case StageLetterWritten:
		return "letter-written"
	}
	return "none"
}

// ResumeMaker walks a resume through upload, gap analysis, gap answers and
// generation, with an optional cover letter at the end. Each step needs the
// output of the one before it. Starting an earlier step again discards the
// later ones. While a request is out, no other step, AnswerGaps and Reset
// included, may change the flow.
type ResumeMaker struct {
	api      MakerAPI
	history  HistoryRecorder
	notifier Notifier

	// Status carries the in-flight flag and error for the whole flow.
	Status Slot[Stage]

	mu        sync.Mutex
	stage     Stage
	fileURL   string
	resume    *models.ResumeSchema
	posting   models.ScrapedJob
	gaps      *models.GapAnalysis
	answers   map[string]string
	tailored  *models.ResumeSchema
	pdf       []byte
	letter    string
	letterPDF []byte
}

// NewResumeMaker returns a maker that records each generated resume in
// history. history may be nil.
func NewResumeMaker(api MakerAPI, history HistoryRecorder, notifier Notifier) *ResumeMaker {
	return &ResumeMaker{api: api, history: history, notifier: notifier}
}

func (m *ResumeMaker) Stage() Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stage
}

// need checks that stage has been reached.
func (m *ResumeMaker) need(stage Stage, message string) error {
	if m.Stage() < stage {
		notify(m.notifier, LevelError, message)
		return ErrPrecondition
	}
	return nil
}

// Upload sends a PDF or DOCX resume for parsing. The size and type limits are
// checked before anything is sent.
func (m *ResumeMaker) Upload(ctx context.Context, filename string, size int64, content io.Reader) error {
	if err := document.ValidateUpload(filename, size); err != nil {
		if errors.Is(err, document.ErrFileTooLarge) {
			notify(m.notifier, LevelError, "File is too large. Maximum size is 5 MB.")
		} else {
			notify(m.notifier, LevelError, "Unsupported file type. Please upload a PDF or DOCX file.")
		}
		return ErrPrecondition
	}

	_, err := Run(ctx, &m.Status, func(ctx context.Context) (Stage, error) {
		resp, err := m.api.IngestResume(ctx, filename, content)
		if err != nil {
			return StageNone, err
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		m.clearLocked()
		m.resume = resp.Data
		m.fileURL = resp.FileURL
		m.stage = StageUploaded
		return m.stage, nil
	})
	return err
}

// AnalyzeGaps compares the uploaded resume with the posting's description.
func (m *ResumeMaker) AnalyzeGaps(ctx context.Context, posting models.ScrapedJob) error {
	if err := m.need(StageUploaded, "Upload a resume first."); err != nil {
		return err
	}
	if strings.TrimSpace(posting.Description) == "" {
		notify(m.notifier, LevelError, "Job description is missing.")
		return ErrPrecondition
	}

	_, err := Run(ctx, &m.Status, func(ctx context.Context) (Stage, error) {
		m.mu.Lock()
		resume, stage := m.resume, m.stage
		m.mu.Unlock()
		if stage < StageUploaded {
			return StageNone, ErrPrecondition
		}

		gaps, err := m.api.AnalyzeGaps(ctx, resume, posting.Description)
		if err != nil {
			return StageNone, err
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		m.posting = posting
		m.gaps = gaps
		m.answers = nil
		m.tailored, m.pdf = nil, nil
		m.letter, m.letterPDF = "", nil
		m.stage = StageAnalyzed
		return m.stage, nil
	})
	return err
}

// AnalyzePage reads the posting at url and runs the gap analysis on it.
func (m *ResumeMaker) AnalyzePage(ctx context.Context, url string) error {
	if err := m.need(StageUploaded, "Upload a resume first."); err != nil {
		return err
	}
	if m.Status.InFlight() {
		return ErrInFlight
	}

	posting, err := m.api.ScrapePage(ctx, url)
	if err != nil {
		notify(m.notifier, LevelError, "Could not read the job page: "+messageOf(err))
		return err
	}
	return m.AnalyzeGaps(ctx, *posting)
}

// AnswerGaps records the user's answers keyed by missing skill. Blank answers
// and skills that were not asked about are dropped. No request is made.
func (m *ResumeMaker) AnswerGaps(answers map[string]string) error {
	if err := m.need(StageAnalyzed, "Analyze the job description first."); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Status.InFlight() {
		return ErrInFlight
	}

	asked := make(map[string]bool)
	if m.gaps != nil {
		for _, g := range m.gaps.Gaps {
			asked[g.MissingSkill] = true
		}
	}

	kept := make(map[string]string)
	for skill, answer := range answers {
		if asked[skill] && strings.TrimSpace(answer) != "" {
			kept[skill] = strings.TrimSpace(answer)
		}
	}

	m.answers = kept
	m.tailored, m.pdf = nil, nil
	m.letter, m.letterPDF = "", nil
	m.stage = StageAnswered
	return nil
}

// Generate produces the tailored resume and renders it to PDF.
func (m *ResumeMaker) Generate(ctx context.Context) error {
	if err := m.need(StageAnswered, "Answer the gap questions first."); err != nil {
		return err
	}

	_, err := Run(ctx, &m.Status, func(ctx context.Context) (Stage, error) {
		m.mu.Lock()
		resume, posting, answers, stage := m.resume, m.posting, m.answers, m.stage
		m.mu.Unlock()
		if stage < StageAnswered {
			return StageNone, ErrPrecondition
		}

		tailored, err := m.api.GenerateTailored(ctx, resume, posting.Description, answers)
		if err != nil {
			return StageNone, err
		}
		pdf, err := m.api.RenderResumePDF(ctx, tailored)
		if err != nil {
			return StageNone, err
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		m.tailored, m.pdf = tailored, pdf
		m.letter, m.letterPDF = "", nil
		m.stage = StageGenerated
		return m.stage, nil
	})
	if err != nil {
		return err
	}

	m.record(ctx)
	return nil
}

// record adds the generated application to history. A failure here does not
// undo the generation.
func (m *ResumeMaker) record(ctx context.Context) {
	if m.history == nil {
		return
	}

	m.mu.Lock()
	entry := history.Entry{Title: m.posting.Title, Company: m.posting.Company}
	if entry.Title == "" && m.gaps != nil {
		entry.Title = m.gaps.JobTitleDetected
	}
	m.mu.Unlock()

	if _, err := m.history.Add(ctx, entry); err != nil {
		notify(m.notifier, LevelWarning, "Could not save to history: "+messageOf(err))
	}
}

// WriteCoverLetter drafts and renders a letter from the tailored resume.
func (m *ResumeMaker) WriteCoverLetter(ctx context.Context) error {
	if err := m.need(StageGenerated, "Generate the tailored resume first."); err != nil {
		return err
	}

	_, err := Run(ctx, &m.Status, func(ctx context.Context) (Stage, error) {
		m.mu.Lock()
		tailored, jd, stage := m.tailored, m.posting.Description, m.stage
		m.mu.Unlock()
		if stage < StageGenerated {
			return StageNone, ErrPrecondition
		}

		letter, err := m.api.ResumeCoverLetter(ctx, tailored, jd)
		if err != nil {
			return StageNone, err
		}
		pdf, err := m.api.RenderCoverLetterPDF(ctx, tailored, letter)
		if err != nil {
			return StageNone, err
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		m.letter, m.letterPDF = letter, pdf
		m.stage = StageLetterWritten
		return m.stage, nil
	})
	return err
}

// Reset discards every stage. It fails with ErrInFlight while a request is
// out.
func (m *ResumeMaker) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Status.InFlight() {
		return ErrInFlight
	}
	m.clearLocked()
	m.Status.Reset()
	return nil
}

func (m *ResumeMaker) clearLocked() {
	m.stage = StageNone
	m.fileURL = ""
	m.resume = nil
	m.posting = models.ScrapedJob{}
	m.gaps = nil
	m.answers = nil
	m.tailored, m.pdf = nil, nil
	m.letter, m.letterPDF = "", nil
}

func (m *ResumeMaker) Resume() *models.ResumeSchema {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resume
}

func (m *ResumeMaker) FileURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fileURL
}

func (m *ResumeMaker) Gaps() *models.GapAnalysis {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gaps
}

func (m *ResumeMaker) Answers() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.answers))
	for k, v := range m.answers {
		out[k] = v
	}
	return out
}

func (m *ResumeMaker) Tailored() *models.ResumeSchema {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tailored
}

func (m *ResumeMaker) PDF() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pdf
}

func (m *ResumeMaker) Letter() (string, []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.letter, m.letterPDF
}
