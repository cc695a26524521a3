package credential

import (
	"context"
	"errors"
	"testing"
	"time"

	"institute/database"
	"institute/errdefs"
	"institute/logger"
	"institute/models"
	"institute/services/identifier"
	"institute/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store   *database.Store
	objects *testutils.FakeObjectStore
	sender  *testutils.FakeSender
	svc     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutils.NewStore(t)
	gen, err := identifier.NewGenerator(store, "NYST")
	require.NoError(t, err)

	f := &fixture{store: store, objects: testutils.NewFakeObjectStore(), sender: testutils.NewFakeSender()}
	f.svc = New(store, gen, f.objects, f.sender, Options{SendTimeout: time.Second}, logger.Nop())
	f.svc.now = func() time.Time { return issuedAt }
	return f
}

func (f *fixture) certificate(t *testing.T, studentID uint, id, status string) {
	t.Helper()
	url := "https://files.test/" + id + ".pdf"
	_, err := f.store.InsertCertificateRecord(context.Background(), &models.CertificateRecord{
		StudentID: studentID, CertificateID: id, CertificateURL: &url, CertificateStatus: status,
	})
	require.NoError(t, err)
}

func pdf(name string) Artifact {
	return Artifact{Filename: name, Data: []byte("%PDF-1.4")}
}

func TestVerifyMismatchIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := testutils.SeedStudent(t, f.store, "Kiran", "kiran@example.com", "B1",
		testutils.Identity{Aadhar: "123412341234", Pan: "ABCDE1234F", Phone: "9876543210"})
	f.certificate(t, student.ID, "CERT2025NYST007", models.CertificateCompleted)

	_, err := f.svc.Verify(ctx, "CERT2025NYST007", Claims{Aadhar: "123412341234", Email: "someone@else.com"})
	assert.ErrorIs(t, err, errdefs.ErrUnauthorized)

	url, err := f.svc.Verify(ctx, "CERT2025NYST007", Claims{Aadhar: "123412341234", Email: " Kiran@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "https://files.test/CERT2025NYST007.pdf", url)

	url, err = f.svc.Verify(ctx, "CERT2025NYST007", Claims{Pan: "ABCDE1234F", Phone: "9876543210"})
	require.NoError(t, err)
	assert.NotEmpty(t, url)
}

func TestVerifyNeedsExactlyTwoFields(t *testing.T) {
	f := newFixture(t)
	student := testutils.SeedStudent(t, f.store, "Kiran", "kiran@example.com", "B1",
		testutils.Identity{Aadhar: "1111", Pan: "PAN1", Phone: "555"})
	f.certificate(t, student.ID, "CERT2025NYST001", models.CertificateCompleted)

	cases := map[string]Claims{
		"none":  {},
		"one":   {Aadhar: "1111"},
		"three": {Aadhar: "1111", Email: "kiran@example.com", Pan: "PAN1"},
		"four":  {Aadhar: "1111", Email: "kiran@example.com", Pan: "PAN1", Phone: "555"},
		"blank": {Aadhar: "1111", Email: "   "},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Verify(context.Background(), "CERT2025NYST001", claims)
			assert.ErrorIs(t, err, errdefs.ErrBadRequest)
		})
	}
}

func TestVerifyNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claims := Claims{Aadhar: "1111", Email: "p@example.com"}

	pending := testutils.SeedStudent(t, f.store, "P", "p@example.com", "B1", testutils.Identity{Aadhar: "1111"})
	f.certificate(t, pending.ID, "CERT2025NYST002", models.CertificatePending)

	_, err := f.svc.Verify(ctx, "CERT2025NYST999", claims)
	assert.ErrorIs(t, err, errdefs.ErrNotFound)

	_, err = f.svc.Verify(ctx, "CERT2025NYST002", claims)
	assert.ErrorIs(t, err, errdefs.ErrNotFound)
}

func TestIssueReusesCertificateID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := testutils.SeedStudent(t, f.store, "Asha", "asha@example.com", "B1")

	first, err := f.svc.Issue(ctx, student.ID, pdf("v1.pdf"))
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.True(t, first.Notified)
	assert.Equal(t, "CERT2025NYST001", first.Record.CertificateID)
	assert.Equal(t, models.CertificateCompleted, first.Record.CertificateStatus)

	second, err := f.svc.Issue(ctx, student.ID, pdf("v2.pdf"))
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, "CERT2025NYST001", second.Record.CertificateID)
	assert.NotEqual(t, *first.Record.CertificateURL, *second.Record.CertificateURL)

	msgs := f.sender.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Message.Subject, "CERT2025NYST001")

	other := testutils.SeedStudent(t, f.store, "Bo", "bo@example.com", "B1")
	res, err := f.svc.Issue(ctx, other.ID, pdf("bo.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "CERT2025NYST002", res.Record.CertificateID)
}

func TestIssueContinuesLegacySequence(t *testing.T) {
	f := newFixture(t)
	legacy := testutils.SeedStudent(t, f.store, "Old", "old@example.com", "B1")
	f.certificate(t, legacy.ID, "CERT2025NYST006", models.CertificateCompleted)

	student := testutils.SeedStudent(t, f.store, "New", "new@example.com", "B1")
	res, err := f.svc.Issue(context.Background(), student.ID, pdf("c.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "CERT2025NYST007", res.Record.CertificateID)
}

type scriptedIDs struct{ ids []string }

func (g *scriptedIDs) NextCertificateID(context.Context, time.Time) (string, error) {
	if len(g.ids) == 0 {
		return "", errors.New("out of ids")
	}
	id := g.ids[0]
	g.ids = g.ids[1:]
	return id, nil
}

func TestIssueRetriesTakenID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	holder := testutils.SeedStudent(t, f.store, "Holder", "h@example.com", "B1")
	f.certificate(t, holder.ID, "CERT2025NYST010", models.CertificateCompleted)

	student := testutils.SeedStudent(t, f.store, "S", "s@example.com", "B1")
	f.svc.ids = &scriptedIDs{ids: []string{"CERT2025NYST010", "CERT2025NYST011"}}
	res, err := f.svc.Issue(ctx, student.ID, pdf("s.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "CERT2025NYST011", res.Record.CertificateID)
	assert.True(t, res.Created)

	// the taken id still points at the holder's own artifact
	held, err := f.store.GetCertificateByStudent(ctx, holder.ID)
	require.NoError(t, err)
	assert.Equal(t, "CERT2025NYST010", held.CertificateID)
	require.NotNil(t, held.CertificateURL)
	assert.Equal(t, "https://files.test/CERT2025NYST010.pdf", *held.CertificateURL)

	third := testutils.SeedStudent(t, f.store, "T", "t@example.com", "B1")
	f.svc.ids = &scriptedIDs{ids: []string{"CERT2025NYST010", "CERT2025NYST011", "CERT2025NYST010"}}
	_, err = f.svc.Issue(ctx, third.ID, pdf("t.pdf"))
	assert.ErrorIs(t, err, errdefs.ErrDuplicate)
}

func TestCreateRecordYieldsToConcurrentIssue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := testutils.SeedStudent(t, f.store, "R", "r@example.com", "B1")
	f.certificate(t, student.ID, "CERT2025NYST003", models.CertificateCompleted)

	f.svc.ids = &scriptedIDs{ids: []string{"CERT2025NYST004"}}
	rec, created, err := f.svc.createRecord(ctx, student.ID, "https://files.test/late.pdf")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "CERT2025NYST003", rec.CertificateID)
}

func TestIssueFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, 404, pdf("x.pdf"))
	assert.ErrorIs(t, err, errdefs.ErrNotFound)

	student := testutils.SeedStudent(t, f.store, "S", "s@example.com", "B1")
	_, err = f.svc.Issue(ctx, student.ID, Artifact{Filename: "empty.pdf"})
	assert.ErrorIs(t, err, errdefs.ErrValidationFailed)

	f.objects.Err = errors.New("bucket offline")
	_, err = f.svc.Issue(ctx, student.ID, pdf("x.pdf"))
	assert.ErrorIs(t, err, errdefs.ErrUpstreamFailure)

	_, err = f.svc.Get(ctx, student.ID)
	assert.ErrorIs(t, err, errdefs.ErrNotFound)
}

func TestUpdateAndDeleteArtifactKeepID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := testutils.SeedStudent(t, f.store, "D", "d@example.com", "B1", testutils.Identity{Aadhar: "42"})

	_, err := f.svc.Update(ctx, student.ID, pdf("u.pdf"))
	assert.ErrorIs(t, err, errdefs.ErrNotFound)
	_, err = f.svc.DeleteArtifact(ctx, student.ID)
	assert.ErrorIs(t, err, errdefs.ErrNotFound)

	issued, err := f.svc.Issue(ctx, student.ID, pdf("a.pdf"))
	require.NoError(t, err)
	id := issued.Record.CertificateID

	updated, err := f.svc.Update(ctx, student.ID, pdf("b.pdf"))
	require.NoError(t, err)
	assert.Equal(t, id, updated.CertificateID)
	assert.Equal(t, models.CertificateCompleted, updated.CertificateStatus)
	assert.Contains(t, *updated.CertificateURL, "b.pdf")

	cleared, err := f.svc.DeleteArtifact(ctx, student.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.CertificateURL)
	assert.Equal(t, id, cleared.CertificateID)
	assert.Equal(t, models.CertificateCompleted, cleared.CertificateStatus)

	_, err = f.svc.Verify(ctx, id, Claims{Aadhar: "42", Email: "d@example.com"})
	assert.ErrorIs(t, err, errdefs.ErrNotFound)

	again, err := f.svc.Issue(ctx, student.ID, pdf("c.pdf"))
	require.NoError(t, err)
	assert.Equal(t, id, again.Record.CertificateID)
	assert.False(t, again.Created)

	url, err := f.svc.Verify(ctx, id, Claims{Aadhar: "42", Email: "d@example.com"})
	require.NoError(t, err)
	assert.Contains(t, url, "c.pdf")
}
