package registry

import (
	"math"
	"strings"
	"testing"
	"testing/quick"
	"unicode"
)

// 属性：任意文本分词后，所有词项均为小写、不含标点、不含空串
func TestProperty_TokenizeTermsAreCleanLowercase(t *testing.T) {
	property := func(text string) bool {
		kw := Tokenize(text)
		for term := range kw.Terms {
			if term == "" {
				t.Logf("空词项: text=%q", text)
				return false
			}
			if term != strings.ToLower(term) {
				t.Logf("词项未小写 %q: text=%q", term, text)
				return false
			}
			for _, r := range term {
				if unicode.IsPunct(r) || unicode.IsSymbol(r) {
					t.Logf("词项含标点 %q: text=%q", term, text)
					return false
				}
			}
		}
		return true
	}

	if err := quick.Check(property, &quick.Config{MaxCount: 500}); err != nil {
		t.Fatal(err)
	}
}

// 属性：非零向量与自身的余弦相似度为 1
func TestProperty_CosineSelfSimilarity(t *testing.T) {
	property := func(text string) bool {
		kw := Tokenize(text)
		if kw.Len() == 0 {
			return true // 空向量范数为 0，结果未定义，跳过
		}
		score := Cosine(kw, kw)
		return math.Abs(score-1.0) < 1e-9
	}

	if err := quick.Check(property, &quick.Config{MaxCount: 500}); err != nil {
		t.Fatal(err)
	}
}

// 属性：余弦相似度对称
func TestProperty_CosineSymmetry(t *testing.T) {
	property := func(textA, textB string) bool {
		a, b := Tokenize(textA), Tokenize(textB)
		ab, ba := Cosine(a, b), Cosine(b, a)
		if math.IsNaN(ab) && math.IsNaN(ba) {
			return true
		}
		// map 遍历顺序随机，浮点累加顺序不同允许极小误差
		return math.Abs(ab-ba) < 1e-12
	}

	if err := quick.Check(property, &quick.Config{MaxCount: 500}); err != nil {
		t.Fatal(err)
	}
}

func TestTokenizeCountsAndPunctuation(t *testing.T) {
	kw := Tokenize("Will X happen? Will it, really-really?")
	expected := map[string]int{
		"will": 2, "x": 1, "happen": 1, "it": 1, "really": 2,
	}
	if len(kw.Terms) != len(expected) {
		t.Fatalf("terms = %v, want %v", kw.Terms, expected)
	}
	for term, count := range expected {
		if kw.Terms[term] != count {
			t.Fatalf("terms[%q] = %d, want %d", term, kw.Terms[term], count)
		}
	}
}

func TestTokenizeEmptyAndPunctuationOnly(t *testing.T) {
	for _, text := range []string{"", "   ", "?!.,;--"} {
		kw := Tokenize(text)
		if kw.Len() != 0 {
			t.Fatalf("Tokenize(%q) = %v, want empty", text, kw.Terms)
		}
		if kw.Norm() != 0 {
			t.Fatalf("Tokenize(%q).Norm() = %v, want 0", text, kw.Norm())
		}
	}
}

func TestCosineZeroNormIsNaN(t *testing.T) {
	empty := Tokenize("")
	full := Tokenize("some words here")
	if score := Cosine(empty, full); !math.IsNaN(score) {
		t.Fatalf("Cosine(empty, full) = %v, want NaN", score)
	}
	if score := Cosine(full, empty); !math.IsNaN(score) {
		t.Fatalf("Cosine(full, empty) = %v, want NaN", score)
	}
}

func TestCosineDisjointVectorsIsZero(t *testing.T) {
	a := Tokenize("alpha beta")
	b := Tokenize("gamma delta")
	if score := Cosine(a, b); score != 0 {
		t.Fatalf("Cosine = %v, want 0", score)
	}
}

func TestTokenizeNormPrecomputed(t *testing.T) {
	kw := Tokenize(strings.Repeat("word ", 3)) // {word:3}
	if got := kw.Norm(); math.Abs(got-3.0) > 1e-9 {
		t.Fatalf("Norm = %v, want 3", got)
	}
}
