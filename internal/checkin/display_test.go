package checkin

import (
	"testing"

	"github.com/qrgate/checkin-gateway/internal/model"
)

func TestOverlayStateRoundTrip(t *testing.T) {
	o := NewOverlay()
	if st := o.State(); st.Visible {
		t.Fatal("new overlay claims to be visible")
	}

	o.Show(model.SeveritySuccess, "OK")
	st := o.State()
	if !st.Visible || st.Severity != model.SeveritySuccess || st.Message != "OK" || st.ShownAt == nil {
		t.Fatalf("state after Show = %+v", st)
	}

	o.Clear()
	st = o.State()
	if st.Visible || st.Message != "" || st.ShownAt != nil {
		t.Fatalf("state after Clear = %+v", st)
	}
}
