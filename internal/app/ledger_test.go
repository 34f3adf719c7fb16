package app

import (
	"testing"

	"lexrev/api/internal/store"
)

func baseState() store.VersionState {
	return store.VersionState{
		Document: store.Document{
			ID:          3,
			Title:       "Master services agreement",
			Summary:     "Annual renewal",
			Description: "Standard terms",
		},
		Comments: []store.ReviewComment{
			{Comments: "Payment terms look fine"},
		},
		Risks: []store.Risk{
			{RiskText: "Unlimited liability clause"},
		},
		Observations: "Renewal due in March",
	}
}

func baseSubmission() Submission {
	return Submission{
		Title:       "Master services agreement",
		Summary:     "Annual renewal",
		Description: "Standard terms",
		Comments:    []string{"Payment terms look fine"},
		Risks: []store.RiskInput{
			{RiskText: "Unlimited liability clause"},
		},
		Observations: "Renewal due in March",
	}
}

func TestComputeChangeSetNoOp(t *testing.T) {
	cs := ComputeChangeSet(baseState(), baseSubmission())
	if !cs.Empty() {
		t.Fatalf("identical submission must be a no-op, got %+v", cs)
	}
}

func TestComputeChangeSetIgnoresWhitespace(t *testing.T) {
	sub := baseSubmission()
	sub.Title = "  Master services agreement  "
	sub.Comments = []string{"  Payment terms look fine "}
	sub.Observations = "Renewal due in March\n"

	cs := ComputeChangeSet(baseState(), sub)
	if !cs.Empty() {
		t.Fatalf("whitespace differences must not create a version, got %+v", cs)
	}
}

func TestComputeChangeSetDocumentFacet(t *testing.T) {
	sub := baseSubmission()
	sub.Title = "Master services agreement v2"

	cs := ComputeChangeSet(baseState(), sub)
	if !cs.DocumentChanged {
		t.Fatal("title change must bump the document counter")
	}
	if cs.ReviewChanged || cs.RiskChanged {
		t.Fatalf("only the document counter should bump, got %+v", cs)
	}
}

func TestComputeChangeSetPunctuationCountsAsNew(t *testing.T) {
	sub := baseSubmission()
	sub.Comments = append(sub.Comments, "Payment terms look fine.")

	cs := ComputeChangeSet(baseState(), sub)
	if !cs.ReviewChanged {
		t.Fatal("a reworded comment must bump the review counter")
	}
	if len(cs.NewComments) != 1 || cs.NewComments[0] != "Payment terms look fine." {
		t.Fatalf("the reworded comment must be kept as a new item, got %v", cs.NewComments)
	}
}

func TestComputeChangeSetDedupesSubmission(t *testing.T) {
	sub := baseSubmission()
	sub.Comments = append(sub.Comments,
		"Indemnity cap is low",
		"  Indemnity cap is low  ",
		"",
	)
	sub.Risks = append(sub.Risks,
		store.RiskInput{RiskText: "Auto-renewal trap"},
		store.RiskInput{RiskText: "Auto-renewal trap "},
	)

	cs := ComputeChangeSet(baseState(), sub)
	if len(cs.NewComments) != 1 {
		t.Fatalf("duplicate comments must collapse, got %v", cs.NewComments)
	}
	if len(cs.NewRisks) != 1 {
		t.Fatalf("duplicate risks must collapse, got %+v", cs.NewRisks)
	}
	if !cs.ReviewChanged || !cs.RiskChanged {
		t.Fatalf("new items must bump their counters, got %+v", cs)
	}
}

func TestComputeChangeSetObservationsBumpDocument(t *testing.T) {
	sub := baseSubmission()
	sub.Observations = "Renewal moved to April"

	cs := ComputeChangeSet(baseState(), sub)
	if !cs.DocumentChanged {
		t.Fatal("changed observations must bump the document counter")
	}
	if cs.ReviewChanged || cs.RiskChanged {
		t.Fatalf("only the document counter should bump, got %+v", cs)
	}
}

func TestComputeChangeSetCommentSuppressesDocumentBump(t *testing.T) {
	sub := baseSubmission()
	sub.Title = "Master services agreement v2"
	sub.Comments = append(sub.Comments, "Termination clause revised")

	cs := ComputeChangeSet(baseState(), sub)
	if cs.DocumentChanged {
		t.Fatal("a comment change must absorb the document bump")
	}
	if !cs.ReviewChanged || cs.RiskChanged {
		t.Fatalf("only the review counter should bump, got %+v", cs)
	}
}

func TestComputeChangeSetCommentsAndRisksBumpBoth(t *testing.T) {
	sub := baseSubmission()
	sub.Comments = append(sub.Comments, "Termination clause revised")
	sub.Risks = append(sub.Risks, store.RiskInput{RiskText: "Auto-renewal trap"})
	sub.Observations = "Renewal moved to April"

	cs := ComputeChangeSet(baseState(), sub)
	if !cs.ReviewChanged || !cs.RiskChanged {
		t.Fatalf("comments and risks together must bump both their counters, got %+v", cs)
	}
	if cs.DocumentChanged {
		t.Fatalf("the document counter must stay put, got %+v", cs)
	}
}

func TestComputeChangeSetRiskFacetIndependent(t *testing.T) {
	sub := baseSubmission()
	sub.Risks = append(sub.Risks, store.RiskInput{
		RiskText:        "Jurisdiction clause favors vendor",
		LegalSuggestion: " Negotiate neutral venue ",
	})

	cs := ComputeChangeSet(baseState(), sub)
	if !cs.RiskChanged || cs.DocumentChanged || cs.ReviewChanged {
		t.Fatalf("only the risk counter should bump, got %+v", cs)
	}
	if cs.NewRisks[0].LegalSuggestion != "Negotiate neutral venue" {
		t.Fatalf("risk fields must be trimmed, got %q", cs.NewRisks[0].LegalSuggestion)
	}
}
