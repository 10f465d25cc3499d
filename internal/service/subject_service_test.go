package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"learnpath/backend/internal/dto"
	"learnpath/backend/internal/model"
	pkgerrors "learnpath/backend/pkg/errors"
)

func setupTestSubjectService(reader SyllabusReader) (SubjectService, *testRepos) {
	repo, mocks := newTestRepos()
	return NewSubjectService(repo, reader, zap.NewNop()), mocks
}

func TestSubjectService_CreateFromText(t *testing.T) {
	svc, _ := setupTestSubjectService(nil)
	ctx := context.Background()

	resp, err := svc.CreateFromText(ctx, testUser, &dto.CreateSubjectRequest{
		Name:      " Maths ",
		Syllabus:  "Algebra, Calculus,, Algebra , Vectors",
		StartDate: "2024-01-01",
		EndDate:   "2024-02-01",
	})
	if err != nil {
		t.Fatalf("CreateFromText 应成功: %v", err)
	}
	if resp.Name != "Maths" || resp.Source != model.SubjectSourceText {
		t.Errorf("科目信息错误: %+v", resp)
	}
	if len(resp.Topics) != 3 || resp.Topics[0] != "Algebra" || resp.Topics[2] != "Vectors" {
		t.Errorf("主题应去空去重并保持顺序，实际 %v", resp.Topics)
	}

	_, err = svc.CreateFromText(ctx, testUser, &dto.CreateSubjectRequest{
		Name: "Maths", Syllabus: " , ", StartDate: "2024-01-01", EndDate: "2024-02-01",
	})
	if !errors.Is(err, ErrSubjectNoTopics) {
		t.Errorf("期望 ErrSubjectNoTopics，实际: %v", err)
	}

	_, err = svc.CreateFromText(ctx, testUser, &dto.CreateSubjectRequest{
		Name: "Maths", Syllabus: "Algebra", StartDate: "2024-02-01", EndDate: "2024-01-01",
	})
	if pkgerrors.KindOf(err) != pkgerrors.KindValidation {
		t.Errorf("日期范围颠倒应校验失败，实际: %v", err)
	}
}

func TestSubjectService_CreateFromImage(t *testing.T) {
	req := &dto.CreateSubjectFromImageRequest{
		Name: "Physics", ImageURL: "https://img.test/s.png", StartDate: "2024-01-01", EndDate: "2024-02-01",
	}

	t.Run("未配置文档分析", func(t *testing.T) {
		svc, _ := setupTestSubjectService(nil)
		if _, err := svc.CreateFromImage(context.Background(), testUser, req); !errors.Is(err, ErrDocAIUnavailable) {
			t.Errorf("期望 ErrDocAIUnavailable，实际: %v", err)
		}
	})

	t.Run("识别成功", func(t *testing.T) {
		svc, _ := setupTestSubjectService(&stubReader{lines: []string{"Kinematics", " ", "Optics", "Kinematics"}})
		resp, err := svc.CreateFromImage(context.Background(), testUser, req)
		if err != nil {
			t.Fatalf("CreateFromImage 应成功: %v", err)
		}
		if len(resp.Topics) != 2 || resp.Source != model.SubjectSourceImage {
			t.Errorf("期望 2 个主题且来源为 image，实际 %+v", resp)
		}
	})

	t.Run("识别超时", func(t *testing.T) {
		svc, mocks := setupTestSubjectService(&stubReader{err: &pkgerrors.TimeoutError{Operation: "OCR", Attempts: 10}})
		_, err := svc.CreateFromImage(context.Background(), testUser, req)
		if pkgerrors.KindOf(err) != pkgerrors.KindTimeout {
			t.Errorf("期望超时错误，实际: %v", err)
		}
		if len(mocks.subject.subjects) != 0 {
			t.Error("识别失败不应创建科目")
		}
	})
}

func TestSubjectService_ListAndDelete(t *testing.T) {
	svc, mocks := setupTestSubjectService(nil)
	ctx := context.Background()

	mine, err := svc.CreateFromText(ctx, testUser, &dto.CreateSubjectRequest{
		Name: "Maths", Syllabus: "Algebra", StartDate: "2024-01-01", EndDate: "2024-02-01",
	})
	if err != nil {
		t.Fatalf("CreateFromText 应成功: %v", err)
	}
	other, err := svc.CreateFromText(ctx, "user-2", &dto.CreateSubjectRequest{
		Name: "Art", Syllabus: "Colour", StartDate: "2024-01-01", EndDate: "2024-02-01",
	})
	if err != nil {
		t.Fatalf("CreateFromText 应成功: %v", err)
	}
	mocks.modelPaper.papers["paper-1"] = &model.ModelPaper{
		PaperID: "paper-1", UserID: testUser, SubjectID: mine.ID,
		Questions: datatypes.NewJSONType([]string{"Q"}),
	}

	list, err := svc.List(ctx, testUser)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Errorf("只应列出自己的科目，实际 %+v", list)
	}

	if err := svc.Delete(ctx, testUser, other.ID); !errors.Is(err, ErrSubjectNotFound) {
		t.Errorf("删除他人科目期望 ErrSubjectNotFound，实际: %v", err)
	}
	if err := svc.Delete(ctx, testUser, mine.ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if len(mocks.modelPaper.papers) != 0 {
		t.Error("删除科目应同时删除其试卷")
	}
	if err := svc.Delete(ctx, testUser, mine.ID); !errors.Is(err, ErrSubjectNotFound) {
		t.Errorf("重复删除期望 ErrSubjectNotFound，实际: %v", err)
	}
}
