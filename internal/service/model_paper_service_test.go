package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"learnpath/backend/internal/dto"
	pkgerrors "learnpath/backend/pkg/errors"
)

const samplePaper = `UNIVERSITY EXAMINATIONS 2023
Time allowed: 3 hours

1. Define a group and give two examples.
2) State and prove Lagrange's theorem
for finite groups.
(a) Show that every cyclic group is abelian.
(ii) Hence deduce the order of Z6.
3.5 marks are awarded for neatness.`

func TestSplitQuestions(t *testing.T) {
	got := splitQuestions(samplePaper)
	want := []string{
		"1. Define a group and give two examples.",
		"2) State and prove Lagrange's theorem for finite groups.",
		"(a) Show that every cyclic group is abelian.",
		"(ii) Hence deduce the order of Z6. 3.5 marks are awarded for neatness.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("切分结果错误:\n got=%q\nwant=%q", got, want)
	}
}

func TestSplitQuestions_NoMarkers(t *testing.T) {
	got := splitQuestions("What is entropy?\n\nExplain the second law.")
	if len(got) != 2 {
		t.Errorf("没有题号时每行一块，实际 %q", got)
	}
}

func setupTestModelPaperService(analyzer LayoutAnalyzer, classifier QuestionClassifier) (ModelPaperService, *testRepos, string) {
	repo, mocks := newTestRepos()
	svc := NewModelPaperService(repo, analyzer, classifier, zap.NewNop())
	subjectSvc := NewSubjectService(repo, nil, zap.NewNop())
	sub, _ := subjectSvc.CreateFromText(context.Background(), testUser, &dto.CreateSubjectRequest{
		Name: "Maths", Syllabus: "Groups", StartDate: "2024-01-01", EndDate: "2024-02-01",
	})
	return svc, mocks, sub.ID
}

func TestModelPaperService_Upload(t *testing.T) {
	content := "Instructions: answer all\n1. Define a ring.\n2. Define a field.\n3. Total: 100 marks"
	classifier := &stubClassifier{
		verdicts: map[string]bool{
			"1. Define a ring.":   true,
			"3. Total: 100 marks": false,
		},
		failOn: "2. Define a field.",
	}
	svc, mocks, subjectID := setupTestModelPaperService(&stubAnalyzer{content: content}, classifier)

	resp, err := svc.Upload(context.Background(), testUser, subjectID, "2023.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}
	want := []string{"1. Define a ring.", "2. Define a field."}
	if !reflect.DeepEqual(resp.Questions, want) {
		t.Errorf("分类失败的块应保留、判为非试题的块应丢弃，实际 %q", resp.Questions)
	}
	if len(mocks.modelPaper.papers) != 1 {
		t.Error("试卷应落库")
	}
}

func TestModelPaperService_UploadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("未配置文档分析", func(t *testing.T) {
		svc, _, subjectID := setupTestModelPaperService(nil, nil)
		if _, err := svc.Upload(ctx, testUser, subjectID, "a.pdf", nil); !errors.Is(err, ErrDocAIUnavailable) {
			t.Errorf("期望 ErrDocAIUnavailable，实际: %v", err)
		}
	})

	t.Run("科目不存在", func(t *testing.T) {
		svc, _, _ := setupTestModelPaperService(&stubAnalyzer{content: "1. Q"}, nil)
		if _, err := svc.Upload(ctx, testUser, "missing", "a.pdf", nil); !errors.Is(err, ErrSubjectNotFound) {
			t.Errorf("期望 ErrSubjectNotFound，实际: %v", err)
		}
	})

	t.Run("上游失败", func(t *testing.T) {
		upstream := &pkgerrors.UpstreamServiceError{Service: "docai", StatusCode: 401}
		svc, mocks, subjectID := setupTestModelPaperService(&stubAnalyzer{err: upstream}, nil)
		_, err := svc.Upload(ctx, testUser, subjectID, "a.pdf", nil)
		if pkgerrors.KindOf(err) != pkgerrors.KindUpstream {
			t.Errorf("期望上游错误，实际: %v", err)
		}
		if len(mocks.modelPaper.papers) != 0 {
			t.Error("上游失败不应落库")
		}
	})

	t.Run("没有试题", func(t *testing.T) {
		svc, _, subjectID := setupTestModelPaperService(&stubAnalyzer{content: "  \n "}, nil)
		if _, err := svc.Upload(ctx, testUser, subjectID, "a.pdf", nil); !errors.Is(err, ErrModelPaperEmpty) {
			t.Errorf("期望 ErrModelPaperEmpty，实际: %v", err)
		}
	})
}

func TestModelPaperService_ListAndDelete(t *testing.T) {
	svc, _, subjectID := setupTestModelPaperService(&stubAnalyzer{content: "1. Define a ring."}, nil)
	ctx := context.Background()

	paper, err := svc.Upload(ctx, testUser, subjectID, "a.pdf", nil)
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}

	list, err := svc.List(ctx, testUser, &dto.ModelPaperListRequest{SubjectID: subjectID})
	if err != nil || len(list) != 1 {
		t.Fatalf("期望 1 份试卷，实际 %d (%v)", len(list), err)
	}
	list, _ = svc.List(ctx, testUser, &dto.ModelPaperListRequest{SubjectID: "other"})
	if len(list) != 0 {
		t.Error("按科目过滤应返回空")
	}

	if err := svc.Delete(ctx, "user-2", paper.ID); !errors.Is(err, ErrModelPaperNotFound) {
		t.Errorf("删除他人试卷期望 ErrModelPaperNotFound，实际: %v", err)
	}
	if err := svc.Delete(ctx, testUser, paper.ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
}
