package search

import (
	"testing"
	"time"
)

func TestParseQuery_Plain(t *testing.T) {
	filters := ParseQuery("database migration errors")
	if filters.Query != "database migration errors" {
		t.Errorf("Query = %q", filters.Query)
	}
	if filters.Project != "" || filters.HasAfter || filters.HasBefore {
		t.Errorf("Plain query should set no filters: %+v", filters)
	}
}

func TestParseQuery_Project(t *testing.T) {
	filters := ParseQuery("auth bug project:/work/api")
	if filters.Query != "auth bug" {
		t.Errorf("Query = %q, want filters stripped", filters.Query)
	}
	if filters.Project != "/work/api" {
		t.Errorf("Project = %q", filters.Project)
	}
}

func TestParseQuery_ExplicitDates(t *testing.T) {
	filters := ParseQuery("deploy after:2025-01-01 before:2025-06-01")
	if !filters.HasAfter || !filters.HasBefore {
		t.Fatalf("Expected both date bounds: %+v", filters)
	}
	if filters.AfterDate.Format("2006-01-02") != "2025-01-01" {
		t.Errorf("AfterDate = %v", filters.AfterDate)
	}
	if filters.BeforeDate.Format("2006-01-02") != "2025-06-01" {
		t.Errorf("BeforeDate = %v", filters.BeforeDate)
	}
	if filters.Query != "deploy" {
		t.Errorf("Query = %q", filters.Query)
	}
}

func TestParseQuery_NaturalDate(t *testing.T) {
	filters := ParseQuery("refactor after:yesterday")
	if !filters.HasAfter {
		t.Fatal("Expected natural language date to parse")
	}
	if time.Since(filters.AfterDate) > 48*time.Hour {
		t.Errorf("AfterDate = %v, want roughly yesterday", filters.AfterDate)
	}
}

func TestParseQuery_UnparseableDateIgnored(t *testing.T) {
	filters := ParseQuery("fix after:not-a-date")
	if filters.HasAfter {
		t.Error("Unparseable dates should be ignored, not guessed")
	}
	if filters.Query != "fix" {
		t.Errorf("Query = %q", filters.Query)
	}
}
