// Package chatbot answers a fixed family of free-text questions from facts
// precomputed over the full, unfiltered dataset.
package chatbot

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gtdash/domain/incident"

	"github.com/gomarkdown/markdown"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	greetingReply = "Hello! Ask me about the incidents in this dataset, for example which year was the deadliest."
	fallbackReply = "Sorry, I did not understand that question. Try one of these:\n\n" +
		"- How many attacks occurred in 2015?\n" +
		"- Which country had the most attacks?\n" +
		"- What was the deadliest year?\n" +
		"- How many attacks are recorded in total?\n" +
		"- How many people were killed?\n" +
		"- How many attack types are there?"
)

var (
	yearPattern  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	wordPattern  = regexp.MustCompile(`[a-z]+`)
	greetingWord = map[string]bool{"hi": true, "hello": true, "hey": true, "greetings": true, "howdy": true}
)

// facts are the dataset-wide aggregates every rule reads from
type facts struct {
	total        int
	byYear       map[int]int
	topCountry   string
	topCountryN  int
	deadliest    int
	deadliestSum float64
	totalKilled  float64
	totalWounded float64
	attackTypes  int
}

// rule is one (predicate, handler) pair; rules are tried in order
type rule struct {
	name   string
	match  func(q string) bool
	answer func(m *Matcher, q string) string
}

// Matcher holds the precomputed facts for one dataset
type Matcher struct {
	facts   facts
	printer *message.Printer
}

// New precomputes the facts of ds. ds is read once and not retained.
func New(ds *incident.Dataset) *Matcher {
	return &Matcher{
		facts:   computeFacts(ds),
		printer: message.NewPrinter(language.English),
	}
}

// Answer matches question against the rules in order and returns the first
// handler's reply. Unrecognised input gets the fallback message.
func (m *Matcher) Answer(question string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, r := range rules {
		if r.match(q) {
			return r.answer(m, q)
		}
	}
	return fallbackReply
}

// Rule reports the name of the rule that would answer question
func (m *Matcher) Rule(question string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, r := range rules {
		if r.match(q) {
			return r.name
		}
	}
	return "fallback"
}

// AnswerHTML renders the markdown answer to HTML
func (m *Matcher) AnswerHTML(question string) (string, string) {
	answer := m.Answer(question)
	return answer, string(markdown.ToHTML([]byte(answer), nil, nil))
}

// Answer is a one-shot convenience for New(ds).Answer(question)
func Answer(question string, ds *incident.Dataset) string {
	return New(ds).Answer(question)
}

var rules = []rule{
	{name: "year_count", match: mentionsYear, answer: (*Matcher).yearCount},
	{name: "top_country", match: asksTopCountry, answer: (*Matcher).topCountry},
	{name: "deadliest_year", match: asksDeadliest, answer: (*Matcher).deadliestYear},
	{name: "total_attacks", match: asksTotalAttacks, answer: (*Matcher).totalAttacks},
	{name: "fatalities", match: asksFatalities, answer: (*Matcher).fatalities},
	{name: "attack_types", match: asksAttackTypes, answer: (*Matcher).attackTypeCount},
	{name: "greeting", match: isGreeting, answer: func(*Matcher, string) string { return greetingReply }},
}

func mentionsYear(q string) bool {
	return yearPattern.MatchString(q)
}

func asksTopCountry(q string) bool {
	return strings.Contains(q, "country") && containsAny(q, "most", "highest")
}

func asksDeadliest(q string) bool {
	return containsAny(q,
		"deadliest", "most deaths", "most fatalities", "most killed", "most kills",
		"highest death", "highest fatalit", "most people killed", "most casualties")
}

func asksTotalAttacks(q string) bool {
	if mentionsAttackTypes(q) {
		return false
	}
	return containsAny(q, "how many", "total", "number of") &&
		containsAny(q, "attack", "incident")
}

func asksFatalities(q string) bool {
	return containsAny(q, "death", "fatalit", "killed", "kills", "died", "wounded", "casualt")
}

func asksAttackTypes(q string) bool {
	return mentionsAttackTypes(q)
}

func mentionsAttackTypes(q string) bool {
	return containsAny(q, "attack type", "types of attack", "kinds of attack", "attack kinds")
}

func isGreeting(q string) bool {
	for _, w := range wordPattern.FindAllString(q, -1) {
		if greetingWord[w] {
			return true
		}
	}
	return false
}

func containsAny(q string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(q, t) {
			return true
		}
	}
	return false
}

func (m *Matcher) yearCount(q string) string {
	year, _ := strconv.Atoi(yearPattern.FindString(q))
	n := m.facts.byYear[year]
	return m.printer.Sprintf("There were **%d** attacks recorded in %s.", n, strconv.Itoa(year))
}

func (m *Matcher) topCountry(string) string {
	if m.facts.total == 0 {
		return "No incidents are recorded, so no country stands out."
	}
	return m.printer.Sprintf("**%s** had the most attacks, with **%d** incidents.",
		m.facts.topCountry, m.facts.topCountryN)
}

func (m *Matcher) deadliestYear(string) string {
	if m.facts.total == 0 {
		return "No incidents are recorded, so there is no deadliest year."
	}
	return m.printer.Sprintf("The deadliest year was **%s**, with **%.0f** people killed.",
		strconv.Itoa(m.facts.deadliest), m.facts.deadliestSum)
}

func (m *Matcher) totalAttacks(string) string {
	return m.printer.Sprintf("The dataset records **%d** attacks in total.", m.facts.total)
}

func (m *Matcher) fatalities(string) string {
	return m.printer.Sprintf("In total **%.0f** people were killed and **%.0f** were wounded.",
		m.facts.totalKilled, m.facts.totalWounded)
}

func (m *Matcher) attackTypeCount(string) string {
	return m.printer.Sprintf("There are **%d** distinct attack types.", m.facts.attackTypes)
}

func computeFacts(ds *incident.Dataset) facts {
	f := facts{byYear: make(map[int]int)}
	if ds == nil {
		return f
	}

	byCountry := make(map[string]int)
	killsByYear := make(map[int]float64)
	attacks := make(map[string]struct{})

	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		f.total++
		f.byYear[r.Year]++
		byCountry[r.Country]++
		killsByYear[r.Year] += r.Kills
		attacks[r.AttackType] = struct{}{}
		f.totalKilled += r.Kills
		f.totalWounded += r.Wounds
	}
	f.attackTypes = len(attacks)

	countries := make([]string, 0, len(byCountry))
	for c := range byCountry {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	for _, c := range countries {
		if byCountry[c] > f.topCountryN {
			f.topCountry, f.topCountryN = c, byCountry[c]
		}
	}

	years := make([]int, 0, len(killsByYear))
	for y := range killsByYear {
		years = append(years, y)
	}
	sort.Ints(years)
	for i, y := range years {
		if i == 0 || killsByYear[y] > f.deadliestSum {
			f.deadliest, f.deadliestSum = y, killsByYear[y]
		}
	}
	return f
}
