package choice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/action-stage/pkg/menu"
)

func intPtr(i int) *int { return &i }

func TestResolve(t *testing.T) {
	doorMenu := menu.New("Open the door", "Knock", "Leave")

	tests := []struct {
		name      string
		raw       string
		menu      menu.Menu
		wantIndex *int
		wantText  string
	}{
		{
			name:      "bare number",
			raw:       "2",
			menu:      doorMenu,
			wantIndex: intPtr(1),
			wantText:  "Knock",
		},
		{
			name:      "number with surrounding whitespace",
			raw:       "  3  ",
			menu:      doorMenu,
			wantIndex: intPtr(2),
			wantText:  "Leave",
		},
		{
			name:      "number followed by free text",
			raw:       "1 but carefully",
			menu:      doorMenu,
			wantIndex: intPtr(0),
			wantText:  "Open the door",
		},
		{
			name:      "number only counts on the first line",
			raw:       "3\nquietly",
			menu:      doorMenu,
			wantIndex: intPtr(2),
			wantText:  "Leave",
		},
		{
			name:      "content match without number",
			raw:       "knock",
			menu:      menu.New("Open the door", "Knock loudly", "Leave"),
			wantIndex: intPtr(1),
			wantText:  "Knock loudly",
		},
		{
			name:      "entry contained in longer reply",
			raw:       "I think I'll knock",
			menu:      menu.New("Knock"),
			wantIndex: intPtr(0),
			wantText:  "Knock",
		},
		{
			name:      "content match overrides leading number",
			raw:       "1 knock",
			menu:      doorMenu,
			wantIndex: intPtr(1),
			wantText:  "Knock",
		},
		{
			name:      "case folding",
			raw:       "OPEN THE DOOR",
			menu:      doorMenu,
			wantIndex: intPtr(0),
			wantText:  "Open the door",
		},
		{
			name:      "first content hit wins",
			raw:       "door",
			menu:      menu.New("Kick the door", "Open the door"),
			wantIndex: intPtr(0),
			wantText:  "Kick the door",
		},
		{
			name:     "out of range number is ad-lib",
			raw:      "99",
			menu:     doorMenu,
			wantText: "99",
		},
		{
			name:     "zero is out of range",
			raw:      "0",
			menu:     doorMenu,
			wantText: "0",
		},
		{
			name:     "negative number is not an index",
			raw:      "-1",
			menu:     doorMenu,
			wantText: "-1",
		},
		{
			name:     "huge number is ad-lib",
			raw:      "99999999999999999999999",
			menu:     doorMenu,
			wantText: "99999999999999999999999",
		},
		{
			name:     "unrelated text is ad-lib and unchanged",
			raw:      "  I climb through the window.  ",
			menu:     doorMenu,
			wantText: "  I climb through the window.  ",
		},
		{
			name:     "blank reply never content-matches",
			raw:      "   ",
			menu:     doorMenu,
			wantText: "   ",
		},
		{
			name:     "empty menu",
			raw:      "1",
			menu:     menu.New(),
			wantText: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.raw, tt.menu)
			if tt.wantIndex == nil {
				assert.Nil(t, res.Index)
				assert.True(t, res.AdLib())
			} else {
				require.NotNil(t, res.Index)
				assert.Equal(t, *tt.wantIndex, *res.Index)
				assert.False(t, res.AdLib())
			}
			assert.Equal(t, tt.wantText, res.Text)
		})
	}
}

func TestBuildDirective(t *testing.T) {
	t.Run("indexed choice", func(t *testing.T) {
		d := BuildDirective(Resolution{Index: intPtr(1), Text: "Knock"})
		assert.Equal(t, "(2. Knock)", d.ModifiedMessage)
		assert.Contains(t, d.StageDirections, "has selected the following action: Knock.")
	})

	t.Run("ad-lib", func(t *testing.T) {
		d := BuildDirective(Resolution{Text: "I climb through the window."})
		assert.Equal(t, "(Ad-lib Action: I climb through the window.)", d.ModifiedMessage)
		assert.Contains(t, d.StageDirections, "has selected the following action: I climb through the window..")
	})
}
