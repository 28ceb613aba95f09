package timeline

import "testing"

func publicStatus(id, acct string) Status {
	return Status{
		ID:         id,
		Visibility: "public",
		Account:    Account{ID: "u-" + acct, Acct: acct},
	}
}

func TestFilter_Keep(t *testing.T) {
	f := NewFilter("Me@example.social")

	cases := []struct {
		name string
		s    Status
		want bool
	}{
		{"public post", publicStatus("1", "ada"), true},
		{"unlisted", func() Status { s := publicStatus("2", "ada"); s.Visibility = "unlisted"; return s }(), false},
		{"followers only", func() Status { s := publicStatus("3", "ada"); s.Visibility = "private"; return s }(), false},
		{"already favourited", func() Status { s := publicStatus("4", "ada"); s.Favourited = true; return s }(), false},
		{"already boosted", func() Status { s := publicStatus("5", "ada"); s.Reblogged = true; return s }(), false},
		{"bookmarked", func() Status { s := publicStatus("6", "ada"); s.Bookmarked = true; return s }(), false},
		{"own post, case insensitive", publicStatus("7", "me@example.social"), false},
		{"noindex flag", func() Status {
			s := publicStatus("8", "ada")
			s.Account.NoIndex = true
			return s
		}(), false},
		{"noindex hashtag in bio", func() Status {
			s := publicStatus("9", "ada")
			s.Account.Note = "plants and trains #NoIndex"
			return s
		}(), false},
		{"nobot hashtag in bio", func() Status {
			s := publicStatus("10", "ada")
			s.Account.Note = "#nobot please"
			return s
		}(), false},
	}

	for _, tc := range cases {
		if got := f.Keep(&tc.s); got != tc.want {
			t.Errorf("%s: Keep = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFilter_BoostJudgedByContentAuthor(t *testing.T) {
	f := NewFilter("me@example.social")

	inner := publicStatus("50", "ada")
	boost := publicStatus("51", "booster")
	boost.Reblog = &inner
	if !f.Keep(&boost) {
		t.Error("boost of an eligible post should pass")
	}

	optedOut := publicStatus("52", "ada")
	optedOut.Account.NoIndex = true
	boostOfOptOut := publicStatus("53", "booster")
	boostOfOptOut.Reblog = &optedOut
	if f.Keep(&boostOfOptOut) {
		t.Error("boost should be dropped when the content author opted out")
	}

	mine := publicStatus("54", "me@example.social")
	boostOfMine := publicStatus("55", "booster")
	boostOfMine.Reblog = &mine
	if f.Keep(&boostOfMine) {
		t.Error("boost of the account's own post should be dropped")
	}

	seen := publicStatus("56", "ada")
	seen.Favourited = true
	boostOfSeen := publicStatus("57", "booster")
	boostOfSeen.Reblog = &seen
	if f.Keep(&boostOfSeen) {
		t.Error("boost of an already-favourited post should be dropped")
	}
}

func TestFilter_ApplyDropsPageOverlapOnly(t *testing.T) {
	f := NewFilter("me@example.social")

	post := publicStatus("100", "ada")
	boost := publicStatus("101", "booster")
	inner := post
	boost.Reblog = &inner

	in := []Status{post, boost, post, publicStatus("102", "bep")}
	out := f.Apply(in)

	if len(out) != 3 {
		t.Fatalf("kept %d statuses, want 3", len(out))
	}
	// The boost survives alongside the original; only the exact repeat
	// of id 100 goes.
	if out[0].ID != "100" || out[1].ID != "101" || out[2].ID != "102" {
		t.Errorf("kept ids = %s,%s,%s", out[0].ID, out[1].ID, out[2].ID)
	}
}
