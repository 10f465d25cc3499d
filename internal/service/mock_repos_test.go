package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"learnpath/backend/config"
	"learnpath/backend/internal/model"
	"learnpath/backend/internal/planner"
	"learnpath/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	user.CreatedAt = time.Now()
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock StudyTimeRepository ──

type mockStudyTimeRepo struct {
	records map[string]*model.StudyTime
}

func newMockStudyTimeRepo() *mockStudyTimeRepo {
	return &mockStudyTimeRepo{records: make(map[string]*model.StudyTime)}
}

func (m *mockStudyTimeRepo) GetByUser(_ context.Context, userID string) (*model.StudyTime, error) {
	if st, ok := m.records[userID]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudyTimeRepo) Upsert(_ context.Context, st *model.StudyTime) error {
	cp := *st
	m.records[st.UserID] = &cp
	return nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects map[string]*model.Subject
	seq      int
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	if subject.SubjectID == "" {
		m.seq++
		subject.SubjectID = fmt.Sprintf("subject-%d", m.seq)
	}
	subject.CreatedAt = time.Now()
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, userID, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok && s.UserID == userID {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) ListByUser(_ context.Context, userID string) ([]model.Subject, error) {
	var result []model.Subject
	for _, s := range m.subjects {
		if s.UserID == userID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubjectID < result[j].SubjectID })
	return result, nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, userID, id string) (int64, error) {
	if s, ok := m.subjects[id]; ok && s.UserID == userID {
		delete(m.subjects, id)
		return 1, nil
	}
	return 0, nil
}

// ── Mock ModelPaperRepository ──

type mockModelPaperRepo struct {
	papers map[string]*model.ModelPaper
	seq    int
}

func newMockModelPaperRepo() *mockModelPaperRepo {
	return &mockModelPaperRepo{papers: make(map[string]*model.ModelPaper)}
}

func (m *mockModelPaperRepo) Create(_ context.Context, paper *model.ModelPaper) error {
	if paper.PaperID == "" {
		m.seq++
		paper.PaperID = fmt.Sprintf("paper-%d", m.seq)
	}
	m.papers[paper.PaperID] = paper
	return nil
}

func (m *mockModelPaperRepo) ListByUser(_ context.Context, userID, subjectID string) ([]model.ModelPaper, error) {
	var result []model.ModelPaper
	for _, p := range m.papers {
		if p.UserID != userID {
			continue
		}
		if subjectID != "" && p.SubjectID != subjectID {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PaperID < result[j].PaperID })
	return result, nil
}

func (m *mockModelPaperRepo) Delete(_ context.Context, userID, id string) (int64, error) {
	if p, ok := m.papers[id]; ok && p.UserID == userID {
		delete(m.papers, id)
		return 1, nil
	}
	return 0, nil
}

func (m *mockModelPaperRepo) DeleteBySubject(_ context.Context, userID, subjectID string) error {
	for id, p := range m.papers {
		if p.UserID == userID && p.SubjectID == subjectID {
			delete(m.papers, id)
		}
	}
	return nil
}

// ── Mock PlanRepository ──

type mockPlanRepo struct {
	plans   map[string]*model.Plan
	seq     int
	upserts int
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{plans: make(map[string]*model.Plan)}
}

func (m *mockPlanRepo) GetByUser(_ context.Context, userID string) (*model.Plan, error) {
	if p, ok := m.plans[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// Upsert 与 GORM 实现一致：每次写入都生成新的 plan_id
func (m *mockPlanRepo) Upsert(_ context.Context, plan *model.Plan) error {
	m.seq++
	m.upserts++
	plan.PlanID = fmt.Sprintf("plan-%d", m.seq)
	cp := *plan
	m.plans[plan.UserID] = &cp
	return nil
}

func (m *mockPlanRepo) UpdateDates(_ context.Context, userID string, startDate, endDate *string) error {
	p, ok := m.plans[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if startDate != nil {
		p.StartDate = *startDate
	}
	if endDate != nil {
		p.EndDate = *endDate
	}
	return nil
}

// ── Mock ProgressRepository ──

type mockProgressRepo struct {
	records map[string]*model.Progress
	upserts int
	failErr error
}

func newMockProgressRepo() *mockProgressRepo {
	return &mockProgressRepo{records: make(map[string]*model.Progress)}
}

func (m *mockProgressRepo) GetByUser(_ context.Context, userID string) (*model.Progress, error) {
	if p, ok := m.records[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgressRepo) Upsert(_ context.Context, progress *model.Progress) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.upserts++
	cp := *progress
	m.records[progress.UserID] = &cp
	return nil
}

// days 读取已保存的进度内容
func (m *mockProgressRepo) days(userID string) planner.Progress {
	if p, ok := m.records[userID]; ok {
		return p.Days.Data()
	}
	return nil
}

// ── 外部服务桩 ──

type stubGenerator struct {
	mu       sync.Mutex
	schedule planner.Schedule
	warnings []string
	err      error
	calls    int
	lastReq  planner.GenerationRequest
}

func (g *stubGenerator) GeneratePlan(_ context.Context, req planner.GenerationRequest) (planner.Schedule, []string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastReq = req
	if g.err != nil {
		return nil, nil, g.err
	}
	return g.schedule, g.warnings, nil
}

type stubReader struct {
	lines []string
	err   error
}

func (r *stubReader) ReadLines(context.Context, string) ([]string, error) {
	return r.lines, r.err
}

type stubAnalyzer struct {
	content string
	err     error
}

func (a *stubAnalyzer) AnalyzeLayout(context.Context, []byte) (string, error) {
	return a.content, a.err
}

type stubClassifier struct {
	verdicts map[string]bool
	failOn   string
}

func (c *stubClassifier) IsQuestion(_ context.Context, text string) (bool, error) {
	if text == c.failOn {
		return false, fmt.Errorf("classifier unavailable")
	}
	return c.verdicts[text], nil
}

// ── 测试装配 ──

type testRepos struct {
	user       *mockUserRepo
	studyTime  *mockStudyTimeRepo
	subject    *mockSubjectRepo
	modelPaper *mockModelPaperRepo
	plan       *mockPlanRepo
	progress   *mockProgressRepo
}

func newTestRepos() (*repository.Repository, *testRepos) {
	mocks := &testRepos{
		user:       newMockUserRepo(),
		studyTime:  newMockStudyTimeRepo(),
		subject:    newMockSubjectRepo(),
		modelPaper: newMockModelPaperRepo(),
		plan:       newMockPlanRepo(),
		progress:   newMockProgressRepo(),
	}
	repo := &repository.Repository{
		User:       mocks.user,
		StudyTime:  mocks.studyTime,
		Subject:    mocks.subject,
		ModelPaper: mocks.modelPaper,
		Plan:       mocks.plan,
		Progress:   mocks.progress,
	}
	return repo, mocks
}

func testPlannerConfig() *config.PlannerConfig {
	return &config.PlannerConfig{
		MinTopicsPerSlot:    2,
		MinQuestionsPerSlot: 5,
		SchemaPolicy:        "reject",
		Timezone:            "UTC",
		LockTTL:             time.Minute,
	}
}

// fixedNow 测试统一的"今天"：2024-01-02
func fixedNow() time.Time {
	return time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
}

func setupTestPlanService(gen PlanGenerator) (*planService, *testRepos) {
	repo, mocks := newTestRepos()
	svc := NewPlanService(repo, gen, newLocalLocker(), testPlannerConfig(), zap.NewNop()).(*planService)
	svc.now = fixedNow
	return svc, mocks
}

func setupTestProgressService() (*progressService, *testRepos) {
	repo, mocks := newTestRepos()
	svc := NewProgressService(repo, newLocalLocker(), testPlannerConfig(), zap.NewNop()).(*progressService)
	svc.now = fixedNow
	return svc, mocks
}
