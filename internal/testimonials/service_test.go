package testimonials_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/shared"
	"github.com/vitrine-cms/vitrine/internal/testimonials"
)

type memRepo struct {
	items   []testimonials.Testimonial
	deleted []string
}

func (m *memRepo) ListTestimonials(ctx context.Context) ([]testimonials.Testimonial, error) {
	return m.items, nil
}

func (m *memRepo) ListPublishedTestimonials(ctx context.Context) ([]testimonials.Testimonial, error) {
	var out []testimonials.Testimonial
	for _, t := range m.items {
		if t.IsPublished {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memRepo) GetTestimonial(ctx context.Context, id string) (testimonials.Testimonial, error) {
	for _, t := range m.items {
		if t.ID == id {
			return t, nil
		}
	}
	return testimonials.Testimonial{}, shared.ErrNotFound
}

func (m *memRepo) CreateTestimonial(ctx context.Context, t testimonials.Testimonial) (testimonials.Testimonial, error) {
	t.ID = "t-1"
	m.items = append(m.items, t)
	return t, nil
}

func (m *memRepo) UpdateTestimonial(ctx context.Context, t testimonials.Testimonial) (testimonials.Testimonial, error) {
	for i, existing := range m.items {
		if existing.ID == t.ID {
			m.items[i] = t
			return t, nil
		}
	}
	return testimonials.Testimonial{}, shared.ErrNotFound
}

func (m *memRepo) DeleteTestimonial(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type recordingAudit struct {
	records []shared.AuditLog
}

func (a *recordingAudit) TryRecord(ctx context.Context, log shared.AuditLog) {
	a.records = append(a.records, log)
}

func TestCreateTestimonialAudits(t *testing.T) {
	repo := &memRepo{}
	audit := &recordingAudit{}
	service := testimonials.NewService(repo, audit)
	actor := &authz.Principal{ID: "u-2", Role: authz.RoleEditor, IsActive: true}

	created, err := service.CreateTestimonial(context.Background(), actor, testimonials.Testimonial{
		Author: "  Sophie Martin ", Quote: "Un accompagnement remarquable du début à la fin.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sophie Martin", created.Author)
	require.Len(t, audit.records, 1)
	assert.Equal(t, "testimonials.create", audit.records[0].Action)
	assert.Equal(t, "u-2", audit.records[0].ActorID)
}

func TestPublishedTestimonialsFilterUnpublished(t *testing.T) {
	repo := &memRepo{items: []testimonials.Testimonial{
		{ID: "t-1", Author: "A", IsPublished: true},
		{ID: "t-2", Author: "B", IsPublished: false},
	}}
	service := testimonials.NewService(repo, nil)

	published, err := service.PublishedTestimonials(context.Background())
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "t-1", published[0].ID)
}

func TestDeleteTestimonialAuditsWithoutActor(t *testing.T) {
	repo := &memRepo{}
	audit := &recordingAudit{}
	service := testimonials.NewService(repo, audit)

	require.NoError(t, service.DeleteTestimonial(context.Background(), nil, "t-9"))
	assert.Equal(t, []string{"t-9"}, repo.deleted)
	require.Len(t, audit.records, 1)
	assert.Equal(t, "", audit.records[0].ActorID)
}
