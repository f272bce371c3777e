package persona

import (
	"strings"
	"testing"
)

func TestSales_ColdCall(t *testing.T) {
	p, err := Sales(CallCold, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if p.Name != "Sam Morrison" {
		t.Errorf("Expected Sam Morrison, got %s", p.Name)
	}
	if !strings.Contains(p.Instructions, "cold call") {
		t.Error("Expected call type substituted into prompt")
	}
	if !strings.Contains(p.Instructions, "CALL TYPE: Cold Call") {
		t.Error("Expected cold call context in prompt")
	}
	if !strings.Contains(p.Instructions, "Neutral (Level 3/5)") {
		t.Error("Expected temperament context in prompt")
	}
	if strings.Contains(p.Instructions, "{CALL_TYPE}") || strings.Contains(p.Instructions, "{TEMPERAMENT_CONTEXT}") {
		t.Error("Expected all placeholders substituted")
	}
	if !p.AgentOpens {
		t.Error("Expected the prospect to answer first on a cold call")
	}
	if p.OpeningInstruction == "" || p.TextOpeningInstruction == "" {
		t.Error("Expected opening instructions for a cold call")
	}
}

func TestSales_DiscoveryCallUserOpens(t *testing.T) {
	p, err := Sales(CallDiscovery, 4)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(p.Instructions, "CALL TYPE: Discovery Call") {
		t.Error("Expected discovery call context in prompt")
	}
	if p.AgentOpens {
		t.Error("Expected the user to open a scheduled discovery call")
	}
	if p.OpeningInstruction != "" {
		t.Error("Expected no opening instruction for discovery calls")
	}
}

func TestSales_VoiceMapping(t *testing.T) {
	tests := []struct {
		temperament Temperament
		voice       string
	}{
		{1, "ash"},
		{2, "ash"},
		{3, "sage"},
		{4, "coral"},
		{5, "coral"},
	}
	for _, tt := range tests {
		p, err := Sales(CallCold, tt.temperament)
		if err != nil {
			t.Fatalf("Temperament %d: unexpected error %v", tt.temperament, err)
		}
		if p.Voice != tt.voice {
			t.Errorf("Temperament %d: expected voice %s, got %s", tt.temperament, tt.voice, p.Voice)
		}
	}
}

func TestSales_InvalidInputs(t *testing.T) {
	if _, err := Sales(CallCold, 0); err == nil {
		t.Error("Expected error for temperament 0")
	}
	if _, err := Sales(CallCold, 6); err == nil {
		t.Error("Expected error for temperament 6")
	}
	if _, err := Sales("video", 3); err == nil {
		t.Error("Expected error for unknown call type")
	}
}

func TestInterview(t *testing.T) {
	cfg := InterviewConfig{
		CompanyName:      "Clay",
		RoleName:         "GTM Engineer",
		InterviewerName:  "Tong-Tong Li",
		InterviewerTitle: "GTM Engineer Manager",
		CompanyContext:   "Data enrichment and automation platform.",
	}
	p, err := Interview(cfg, 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(p.Instructions, "You are Tong-Tong Li, GTM Engineer Manager at Clay") {
		t.Error("Expected identity line in prompt")
	}
	if !strings.Contains(p.Instructions, "## ABOUT CLAY") {
		t.Error("Expected company context section")
	}
	if !strings.Contains(p.Instructions, "Probing (Level 2/5)") {
		t.Error("Expected style context in prompt")
	}
	if !strings.Contains(p.Instructions, "Stay in character as Tong-Tong Li") {
		t.Error("Expected interviewer name substituted into rules")
	}
	if !p.AgentOpens {
		t.Error("Expected the interviewer to open the conversation")
	}
	if p.Voice != "ash" {
		t.Errorf("Expected ash for probing style, got %s", p.Voice)
	}
}

func TestInterview_DefaultsAndValidation(t *testing.T) {
	cfg := InterviewConfig{
		CompanyName:      "Acme",
		RoleName:         "Account Executive",
		InterviewerName:  "Jordan Reyes",
		InterviewerTitle: "Head of Sales",
	}
	p, err := Interview(cfg, 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(p.Instructions, "Standard responsibilities for this type of role.") {
		t.Error("Expected default job description")
	}
	if strings.Contains(p.Instructions, "## ABOUT YOU") {
		t.Error("Expected no interviewer context section when not provided")
	}

	if _, err := Interview(InterviewConfig{}, 3); err == nil {
		t.Error("Expected error for missing required fields")
	}
	if _, err := Interview(cfg, 9); err == nil {
		t.Error("Expected error for out-of-range style")
	}
}

func TestLabels(t *testing.T) {
	if TemperamentName(1) != "Hostile" || TemperamentName(5) != "Eager" {
		t.Error("Unexpected temperament labels")
	}
	if StyleName(1) != "Challenging" || StyleName(5) != "Friendly" {
		t.Error("Unexpected style labels")
	}
}
