package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Adnan-Sarkar/course-review-backend/internal/apperr"
)

func intPtr(v int) *int { return &v }

func TestUpdateRejectsDirectDurationChange(t *testing.T) {
	// 派生字段保护必须在任何存储访问之前生效：
	// 服务不持有任何连接也必须能拒绝该载荷。
	svc := NewCourseService(nil, nil, nil)
	_, err := svc.Update(context.Background(), "662fb2e6a1b2c3d4e5f60718", UpdateCourseInput{
		DurationInWeeks: intPtr(5),
	})
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	require.Equal(t, http.StatusBadRequest, ae.Status)
	require.Contains(t, ae.Message, "durationInWeeks")
}

func TestUpdateRejectsInvalidDetailsLevel(t *testing.T) {
	// 更新路径的 details 为松散映射，枚举约束必须与创建路径一致，
	// 且在任何存储访问之前生效。
	svc := NewCourseService(nil, nil, nil)
	_, err := svc.Update(context.Background(), "662fb2e6a1b2c3d4e5f60718", UpdateCourseInput{
		Details: map[string]interface{}{"level": "Expert"},
	})
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	require.Equal(t, http.StatusBadRequest, ae.Status)
	require.Contains(t, ae.Message, "details.level")
}

func TestUpdateRejectsUnknownDetailsField(t *testing.T) {
	svc := NewCourseService(nil, nil, nil)
	_, err := svc.Update(context.Background(), "662fb2e6a1b2c3d4e5f60718", UpdateCourseInput{
		Details: map[string]interface{}{"difficulty": "hard"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown details field")
}

func TestUpdateRejectsNonStringDescription(t *testing.T) {
	svc := NewCourseService(nil, nil, nil)
	_, err := svc.Update(context.Background(), "662fb2e6a1b2c3d4e5f60718", UpdateCourseInput{
		Details: map[string]interface{}{"description": 42},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "details.description")
}

func TestValidateDetailsUpdateAcceptsKnownFields(t *testing.T) {
	require.NoError(t, validateDetailsUpdate(map[string]interface{}{
		"level":       "Intermediate",
		"description": "updated",
	}))
	require.NoError(t, validateDetailsUpdate(nil))
}

func TestUpdateRejectsMalformedID(t *testing.T) {
	svc := NewCourseService(nil, nil, nil)
	_, err := svc.Update(context.Background(), "not-an-object-id", UpdateCourseInput{})
	require.Error(t, err)
}

func TestGetWithReviewsRejectsMalformedID(t *testing.T) {
	svc := NewCourseService(nil, nil, nil)
	_, err := svc.GetWithReviews(context.Background(), "zzz")
	require.Error(t, err)
}

func TestTagsFromInputDropsRoutingFlag(t *testing.T) {
	tags := tagsFromInput([]TagInput{{Name: "go", IsDeleted: true}, {Name: "web"}})
	require.Len(t, tags, 2)
	for _, tag := range tags {
		require.NotEmpty(t, tag.Name)
	}
}
