package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/repository"
)

func setupLinkServiceTest(t *testing.T) (*LinkService, *visitTestEnv) {
	t.Helper()
	env := setupVisitServiceTest(t)
	return NewLinkService(env.linkRepo, env.userRepo, "https://cv.example.com/"), env
}

func TestShortenCreatesActiveLink(t *testing.T) {
	svc, env := setupLinkServiceTest(t)
	owner := createVisitTestUser(t, env.db, "links_a@example.com", "LA000001", nil)

	link, err := svc.Shorten(ShortenInput{OwnerID: owner.ID, OriginalURL: " https://example.org/landing?x=1 ", Title: "  Landing "})
	if err != nil {
		t.Fatalf("shorten failed: %v", err)
	}
	if len(link.Code) != linkCodeLength || !link.IsActive || link.Title != "Landing" {
		t.Fatalf("unexpected link: %+v", link)
	}
	for _, r := range link.Code {
		if !strings.ContainsRune(linkCodeAlphabet, r) {
			t.Fatalf("code %q contains rune outside alphabet", link.Code)
		}
	}
	if got := svc.ShortURL(link); got != "https://cv.example.com/s/"+link.Code {
		t.Fatalf("unexpected short url %s", got)
	}

	resolved, err := svc.ResolveForRedirect(link.Code)
	if err != nil || resolved.OriginalURL != "https://example.org/landing?x=1" {
		t.Fatalf("resolve failed: %+v err=%v", resolved, err)
	}
	if _, err := svc.ResolveForRedirect(strings.ToLower(link.Code) + "x"); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound for unknown code, got %v", err)
	}
}

func TestShortenRejectsInvalidTargets(t *testing.T) {
	svc, env := setupLinkServiceTest(t)
	owner := createVisitTestUser(t, env.db, "links_b@example.com", "LB000001", nil)

	for _, raw := range []string{"", "ftp://example.org", "javascript:alert(1)", "/relative/path"} {
		if _, err := svc.Shorten(ShortenInput{OwnerID: owner.ID, OriginalURL: raw}); !errors.Is(err, ErrLinkURLInvalid) {
			t.Fatalf("expected ErrLinkURLInvalid for %q, got %v", raw, err)
		}
	}
	if err := env.userRepo.UpdateStatus([]uint{owner.ID}, constants.UserStatusDisabled); err != nil {
		t.Fatalf("disable owner failed: %v", err)
	}
	if _, err := svc.Shorten(ShortenInput{OwnerID: owner.ID, OriginalURL: "https://example.org"}); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}
}

func TestSetActiveHidesLinkFromRedirect(t *testing.T) {
	svc, env := setupLinkServiceTest(t)
	owner := createVisitTestUser(t, env.db, "links_c@example.com", "LC000001", nil)
	stranger := createVisitTestUser(t, env.db, "links_d@example.com", "LC000002", nil)
	link, err := svc.Shorten(ShortenInput{OwnerID: owner.ID, OriginalURL: "https://example.org"})
	if err != nil {
		t.Fatalf("shorten failed: %v", err)
	}

	if _, err := svc.SetActive(stranger.ID, link.ID, false); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound for foreign link, got %v", err)
	}
	if _, err := svc.SetActive(owner.ID, link.ID, false); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if _, err := svc.ResolveForRedirect(link.Code); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("inactive link must not redirect, got %v", err)
	}

	rows, total, err := svc.ListByOwner(owner.ID, 1, 10, "")
	if err != nil || total != 1 || len(rows) != 1 || rows[0].IsActive {
		t.Fatalf("unexpected owner list total=%d rows=%+v err=%v", total, rows, err)
	}
	all, total, err := svc.ListAll(repository.LinkListFilter{OnlyActive: true})
	if err != nil || total != 0 || len(all) != 0 {
		t.Fatalf("expected no active links, total=%d err=%v", total, err)
	}
}

func TestQRCodeReturnsPNG(t *testing.T) {
	svc, env := setupLinkServiceTest(t)
	owner := createVisitTestUser(t, env.db, "links_e@example.com", "LE000001", nil)
	link, err := svc.Shorten(ShortenInput{OwnerID: owner.ID, OriginalURL: "https://example.org"})
	if err != nil {
		t.Fatalf("shorten failed: %v", err)
	}

	png, err := svc.QRCode(owner.ID, link.ID, 0)
	if err != nil {
		t.Fatalf("qr code failed: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("expected png signature, got %x", png[:8])
	}
}
