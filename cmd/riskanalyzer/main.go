package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/RyuSeiri/content-risk-analyzer/pkg/analyzer"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/risk"
	"github.com/RyuSeiri/content-risk-analyzer/pkg/rules/lexicons"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("riskanalyzer %s\n", version)

	case "analyze":
		args, jsonOut, lang := parseAnalyzeFlags(os.Args[2:])
		if len(args) == 0 {
			fmt.Println("Usage: riskanalyzer analyze [--json] [--lang <code>] <text>")
			fmt.Println("Example: riskanalyzer analyze \"you absolute idiot!!!\"")
			os.Exit(1)
		}
		analyzeText(strings.Join(args, " "), lang, jsonOut)

	case "batch":
		if len(os.Args) < 3 {
			fmt.Println("Usage: riskanalyzer batch <file>")
			fmt.Println("The file holds one text per line; results are printed as JSON lines.")
			os.Exit(1)
		}
		analyzeBatchFile(os.Args[2])

	case "lexicons":
		listLexicons()

	default:
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Content Risk Analyzer CLI")
	fmt.Println()
	fmt.Println("Usage: riskanalyzer <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  version                              Show version information")
	fmt.Println("  analyze [--json] [--lang xx] <text>  Score one text")
	fmt.Println("  batch <file>                         Score one text per line, emit JSON lines")
	fmt.Println("  lexicons                             List the loaded rule lexicons")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  riskanalyzer analyze \"SHUT UP you stupid idiot!!!\"")
	fmt.Println("  riskanalyzer analyze --lang zh \"你个二货\"")
	fmt.Println("  riskanalyzer batch comments.txt")
}

func parseAnalyzeFlags(args []string) (rest []string, jsonOut bool, lang string) {
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--json":
			jsonOut = true
		case args[i] == "--lang" && i+1 < len(args):
			lang = args[i+1]
			i++
		default:
			rest = append(rest, args[i])
		}
	}
	return rest, jsonOut, lang
}

func analyzeText(text, lang string, jsonOut bool) {
	a := analyzer.Default()
	assessment := a.AnalyzeText(context.Background(), text, lang)

	if jsonOut {
		out, err := json.MarshalIndent(assessment, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	printAssessment(text, assessment)
}

func printAssessment(text string, a risk.Assessment) {
	fmt.Printf("Text: %s\n", text)
	fmt.Printf("Language: %s\n", a.DetectedLanguage)
	fmt.Println(strings.Repeat("=", 60))

	levelColor(a.RiskLevel).Printf("Risk level: %s", a.RiskLevel)
	fmt.Printf("  (score %.3f, confidence %.2f)\n\n", a.RiskScore, a.Confidence)

	for _, dim := range risk.Dimensions() {
		sig := a.Signals[dim]
		fmt.Printf("  %-20s %s %.3f", dim, scoreBar(sig.Score), sig.Score)
		if !sig.Succeeded {
			color.New(color.FgYellow).Printf("  (degraded)")
		}
		fmt.Println()
	}

	explanations := a.Explanations()
	if len(explanations) > 0 {
		fmt.Println()
		for _, note := range explanations {
			fmt.Printf("  - %s\n", note)
		}
	}
}

func levelColor(level risk.Level) *color.Color {
	switch level {
	case risk.LevelSevere:
		return color.New(color.FgRed, color.Bold)
	case risk.LevelHigh:
		return color.New(color.FgRed)
	case risk.LevelModerate:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

// scoreBar renders a 20-cell bar for a score in [0,1].
func scoreBar(score float64) string {
	const width = 20
	filled := int(score*width + 0.5)
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func analyzeBatchFile(path string) {
	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", path, err)
		os.Exit(1)
	}
	defer file.Close()

	var texts []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		texts = append(texts, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	for _, assessment := range analyzer.AnalyzeBatch(texts) {
		if err := encoder.Encode(assessment); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			os.Exit(1)
		}
	}
}

func listLexicons() {
	store := lexicons.MustLoad()

	fmt.Println("Loaded Lexicons:")
	fmt.Println()
	for _, name := range store.Names() {
		lex := store.Lexicon(name)
		langs := lex.Languages()
		total := 0
		for _, lang := range langs {
			total += len(lex.Terms[lang])
		}
		fmt.Printf("  %s (%d terms)\n", name, total)
		fmt.Printf("    languages: %s\n", strings.Join(langs, ", "))
		fmt.Println()
	}
}
