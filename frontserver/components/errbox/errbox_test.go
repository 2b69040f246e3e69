package errbox

import (
	"testing"

	"github.com/pkg/errors"
)

func TestMinifyError(t *testing.T) {
	var tests = []struct {
		err    error
		expect string
	}{
		{nil, ""},
		{errors.New("not found"), "Not found."},
		{errors.Wrap(errors.New("connection refused"), "failed to fetch"), "Connection refused."},
		{errors.New("already done."), "Already done."},
		{errors.New("ürün"), "Ürün."},
	}

	for _, test := range tests {
		if got := MinifyError(test.err); got != test.expect {
			t.Errorf("MinifyError(%v) = %q, expected %q", test.err, got, test.expect)
		}
	}
}
