package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-catalog-api/internal/dto"
	"github.com/noah-isme/course-catalog-api/pkg/config"
	"github.com/noah-isme/course-catalog-api/pkg/middleware/cors"
)

type scriptedLiveScreen struct {
	views   []dto.CourseListingView
	stopped chan struct{}
}

func (s *scriptedLiveScreen) Watch(ctx context.Context, onUpdate func(dto.CourseListingView)) error {
	for _, view := range s.views {
		onUpdate(view)
		time.Sleep(20 * time.Millisecond)
	}
	<-ctx.Done()
	close(s.stopped)
	return ctx.Err()
}

func (s *scriptedLiveScreen) View() dto.CourseListingView {
	return dto.CourseListingView{Loading: true, Courses: []dto.CourseCard{}}
}

type gaugeRecorder struct {
	open atomic.Int32
}

func (g *gaugeRecorder) LiveScreenOpened() func() {
	g.open.Add(1)
	return func() { g.open.Add(-1) }
}

func newLiveServer(t *testing.T, screen LiveListingScreen, origins cors.OriginSet, gauge *gaugeRecorder) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewLiveHandler(func() LiveListingScreen { return screen }, config.WebsocketConfig{
		WriteTimeout: time.Second,
		PingInterval: time.Second,
	}, origins, gauge, nil)
	r := gin.New()
	r.GET("/courses/live", h.Stream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/courses/live"
}

// readLoadedView skips loading frames, which a newer view may or may not have replaced.
func readLoadedView(t *testing.T, conn *websocket.Conn) dto.CourseListingView {
	t.Helper()
	for {
		var view dto.CourseListingView
		require.NoError(t, conn.ReadJSON(&view))
		if !view.Loading {
			return view
		}
	}
}

func TestLiveHandlerStreamsViews(t *testing.T) {
	screen := &scriptedLiveScreen{
		views: []dto.CourseListingView{
			{StudentID: "stu-1", Courses: []dto.CourseCard{}},
			{StudentID: "stu-2", Courses: []dto.CourseCard{}},
		},
		stopped: make(chan struct{}),
	}
	gauge := &gaugeRecorder{}
	srv := newLiveServer(t, screen, nil, gauge)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	first := readLoadedView(t, conn)
	second := readLoadedView(t, conn)
	assert.Equal(t, "stu-1", first.StudentID)
	assert.Equal(t, "stu-2", second.StudentID)
	assert.Equal(t, int32(1), gauge.open.Load())

	require.NoError(t, conn.Close())
	select {
	case <-screen.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("live screen was not stopped after disconnect")
	}
	require.Eventually(t, func() bool { return gauge.open.Load() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestLiveHandlerSendsLoadingViewWithoutIdentity(t *testing.T) {
	screen := &scriptedLiveScreen{stopped: make(chan struct{})}
	srv := newLiveServer(t, screen, nil, &gaugeRecorder{})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	var view dto.CourseListingView
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&view))
	assert.True(t, view.Loading)
	assert.Empty(t, view.Courses)
	assert.Empty(t, view.StudentID)
}

func TestLiveHandlerRejectsForeignOrigin(t *testing.T) {
	screen := &scriptedLiveScreen{stopped: make(chan struct{})}
	srv := newLiveServer(t, screen, cors.NewOriginSet([]string{"https://catalog.example.edu"}), &gaugeRecorder{})

	header := http.Header{}
	header.Set("Origin", "https://evil.example.com")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
