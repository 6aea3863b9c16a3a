package testutil

import (
	"context"
	"sync"

	"tclock-go/internal/tclock"
)

// SwipeCall records one invocation of the fake swipe service.
type SwipeCall struct {
	Input    string
	Override bool
}

// scripted is one pre-loaded outcome for the fake swipe service.
type scripted struct {
	resp *tclock.SwipeResponse
	err  error
}

// FakeSwipeService is a scripted tclock.SwipeService and tclock.Prober.
// Outcomes queued with EnqueueResponse/EnqueueError are consumed in
// order; once the script is exhausted, calls return a plain successful
// checkin response.
type FakeSwipeService struct {
	mu       sync.Mutex
	script   []scripted
	Calls    []SwipeCall
	ProbeErr error
}

var (
	_ tclock.SwipeService = (*FakeSwipeService)(nil)
	_ tclock.Prober       = (*FakeSwipeService)(nil)
)

func NewFakeSwipeService() *FakeSwipeService {
	return &FakeSwipeService{}
}

// EnqueueResponse schedules a decoded response for a future call.
func (f *FakeSwipeService) EnqueueResponse(resp *tclock.SwipeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = append(f.script, scripted{resp: resp})
}

// EnqueueError schedules a transport failure for a future call.
func (f *FakeSwipeService) EnqueueError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = append(f.script, scripted{err: err})
}

// AcceptedResponse builds a plain successful checkin response.
func AcceptedResponse(firstName, lastName string) *tclock.SwipeResponse {
	return &tclock.SwipeResponse{
		PunchSuccess: true,
		PunchType:    "checkin",
		FirstName:    firstName,
		LastName:     lastName,
	}
}

// RejectedResponse builds a response carrying a business exception code.
func RejectedResponse(code int) *tclock.SwipeResponse {
	return &tclock.SwipeResponse{PunchException: &code}
}

// SystemErrorResponse builds a response carrying a system error code.
func SystemErrorResponse(code int) *tclock.SwipeResponse {
	return &tclock.SwipeResponse{SystemErrorCode: &code}
}

func (f *FakeSwipeService) RecordSwipe(ctx context.Context, swipeInput string) (*tclock.SwipeResponse, error) {
	return f.record(swipeInput, false)
}

func (f *FakeSwipeService) RecordSwipeDepartmentOverride(ctx context.Context, swipeInput string) (*tclock.SwipeResponse, error) {
	return f.record(swipeInput, true)
}

func (f *FakeSwipeService) record(swipeInput string, override bool) (*tclock.SwipeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, SwipeCall{Input: swipeInput, Override: override})

	if len(f.script) == 0 {
		return AcceptedResponse("Test", "Employee"), nil
	}
	next := f.script[0]
	f.script = f.script[1:]
	return next.resp, next.err
}

func (f *FakeSwipeService) Probe(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ProbeErr
}

// CallCount returns how many swipe calls have been made.
func (f *FakeSwipeService) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// FakeImageService records uploaded photos. Err, when set, fails every
// upload.
type FakeImageService struct {
	mu      sync.Mutex
	Uploads map[string][]byte
	Err     error
}

var _ tclock.ImageService = (*FakeImageService)(nil)

func NewFakeImageService() *FakeImageService {
	return &FakeImageService{Uploads: make(map[string][]byte)}
}

func (f *FakeImageService) SaveImage(ctx context.Context, fileName string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Uploads[fileName] = append([]byte(nil), data...)
	return nil
}

// UploadCount returns how many photos were uploaded.
func (f *FakeImageService) UploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Uploads)
}
