package remote_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HerbHall/brandkit/internal/remote"
	"github.com/HerbHall/brandkit/internal/testutil"
	"github.com/HerbHall/brandkit/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSettings(t *testing.T) {
	rec := testutil.NewTheme(testutil.WithAppName("Remote CRM"))
	svc := testutil.NewConfigService(t, &rec)
	c := remote.NewClient(svc.URL(), time.Second)

	got, err := c.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestGetSettings_NotFound(t *testing.T) {
	svc := testutil.NewConfigService(t, nil)
	c := remote.NewClient(svc.URL(), time.Second)

	_, err := c.GetSettings(context.Background())
	assert.ErrorIs(t, err, remote.ErrNotFound)
}

func TestGetSettings_ServerError(t *testing.T) {
	rec := models.DefaultTheme()
	svc := testutil.NewConfigService(t, &rec)
	svc.SetFailing(true)
	c := remote.NewClient(svc.URL(), time.Second)

	_, err := c.GetSettings(context.Background())
	var se *remote.StatusError
	require.True(t, errors.As(err, &se), "error = %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, se.Status)
}

func TestGetSettings_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	_, err := remote.NewClient(srv.URL, time.Second).GetSettings(context.Background())
	assert.ErrorIs(t, err, remote.ErrMalformedResponse)
}

func TestGetSettings_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := remote.NewClient(url, time.Second).GetSettings(context.Background())
	assert.Error(t, err)
}

func TestUpdateSettings_SendsOnlyPatchedFields(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"42","app_name":"X","primary_color":"0 0% 0%","accent_color":"45 90% 50%","sidebar_color":"152 35% 15%"}`))
	}))
	defer srv.Close()

	c := remote.NewClient(srv.URL, time.Second)
	got, err := c.UpdateSettings(context.Background(), models.ThemePatch{PrimaryColor: models.String("0 0% 0%")})
	require.NoError(t, err)

	assert.JSONEq(t, `{"primary_color":"0 0% 0%"}`, body)
	assert.Equal(t, "42", got.ID)
	assert.Equal(t, "0 0% 0%", got.PrimaryColor)
}

func TestJWTTokenAttached(t *testing.T) {
	rec := models.DefaultTheme()
	svc := testutil.NewConfigService(t, &rec)
	secret := []byte("shared-secret")
	c := remote.NewClient(svc.URL(), time.Second,
		remote.WithTokenSource(remote.NewJWTSigner(secret, "brandkit-test", time.Minute)))

	_, err := c.GetSettings(context.Background())
	require.NoError(t, err)

	headers := svc.AuthHeaders()
	require.Len(t, headers, 1)
	require.True(t, strings.HasPrefix(headers[0], "Bearer "))
	claims, err := remote.ParseServiceToken(secret, strings.TrimPrefix(headers[0], "Bearer "))
	require.NoError(t, err)
	assert.Equal(t, "brandkit-test", claims.Subject)
	assert.Equal(t, "app-settings", claims.Scope)
}

func TestStaticToken(t *testing.T) {
	rec := models.DefaultTheme()
	svc := testutil.NewConfigService(t, &rec)
	c := remote.NewClient(svc.URL(), time.Second, remote.WithTokenSource(remote.StaticToken("abc")))

	_, err := c.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer abc"}, svc.AuthHeaders())
}

func TestUploads(t *testing.T) {
	svc := testutil.NewConfigService(t, nil)
	c := remote.NewClient(svc.URL(), time.Second)
	ctx := context.Background()

	logo, err := c.UploadLogo(ctx, "logo.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/logo/logo.png", logo.LogoURL)

	fav, err := c.UploadFavicon(ctx, "favicon.ico", strings.NewReader("ico-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/favicon/favicon.ico", fav.FaviconURL)

	assert.Equal(t, 1, svc.Uploads("logo"))
	assert.Equal(t, 1, svc.Uploads("favicon"))
}

func TestRateLimitHonoursContext(t *testing.T) {
	rec := models.DefaultTheme()
	svc := testutil.NewConfigService(t, &rec)
	c := remote.NewClient(svc.URL(), time.Second, remote.WithRateLimit(0.001, 1))

	_, err := c.GetSettings(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.GetSettings(ctx)
	assert.Error(t, err, "second request should wait past the deadline")
	assert.Equal(t, 1, svc.Gets())
}
