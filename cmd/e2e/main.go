package main

// 端到端巡检：对一个已运行的实例走一遍课程目录的主要链路。
// 仅作为开发/部署后的冒烟检查，不替代单元测试。

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	mrand "math/rand"
	"net/http"
	"net/url"
	"time"
)

var verbose bool
var baseURL *url.URL

// scenario 封装一次端到端巡检过程中共享的资源。
type scenario struct {
	client *http.Client
}

func banner(title string) {
	log.Printf("\n=== %s ===", title)
}

func step(format string, args ...interface{}) {
	log.Printf(" • "+format, args...)
}

// envelope 对应服务端的统一信封。
type envelope struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	ErrorMessage string          `json:"errorMessage"`
	Meta         json.RawMessage `json:"meta"`
	Data         json.RawMessage `json:"data"`
}

type courseInfo struct {
	ID              string  `json:"_id"`
	Title           string  `json:"title"`
	Price           float64 `json:"price"`
	DurationInWeeks int     `json:"durationInWeeks"`
	Tags            []struct {
		Name string `json:"name"`
	} `json:"tags"`
}

func main() {
	var (
		base    string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://127.0.0.1:3500", "Base URL of the course review server")
	flag.DurationVar(&timeout, "timeout", 20*time.Second, "HTTP timeout for requests")
	flag.BoolVar(&verbose, "v", true, "Verbose logging")
	flag.Parse()

	var err error
	baseURL, err = url.Parse(base)
	if err != nil {
		log.Fatalf("invalid base url: %v", err)
	}

	s := &scenario{client: &http.Client{Timeout: timeout}}
	s.run()
	log.Printf("\nall checks passed")
}

func (s *scenario) run() {
	suffix := mrand.Intn(1_000_000)

	banner("health")
	if err := s.expectStatus(http.MethodGet, "/healthz", nil, http.StatusOK, nil); err != nil {
		log.Fatalf("healthz: %v", err)
	}
	step("healthz ok")

	banner("categories")
	var category struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}
	catBody := map[string]any{"name": fmt.Sprintf("e2e-category-%d", suffix)}
	if err := s.doJSON(http.MethodPost, "/api/categories", catBody, http.StatusCreated, &category); err != nil {
		log.Fatalf("create category: %v", err)
	}
	step("created category %s", category.ID)
	if err := s.expectStatus(http.MethodGet, "/api/categories", nil, http.StatusOK, nil); err != nil {
		log.Fatalf("list categories: %v", err)
	}
	step("listed categories")

	banner("courses")
	title := fmt.Sprintf("E2E Go Course %d", suffix)
	courseBody := map[string]any{
		"title":      title,
		"instructor": "E2E Bot",
		"categoryId": category.ID,
		"price":      49.99,
		"startDate":  "2024-01-01",
		"endDate":    "2024-01-15",
		"language":   "English",
		"provider":   "E2E Provider",
		"tags":       []map[string]any{{"name": "go", "isDeleted": false}},
		"details":    map[string]any{"level": "Beginner", "description": "smoke"},
	}
	var course courseInfo
	if err := s.doJSON(http.MethodPost, "/api/course", courseBody, http.StatusCreated, &course); err != nil {
		log.Fatalf("create course: %v", err)
	}
	if course.DurationInWeeks != 2 {
		log.Fatalf("expected derived durationInWeeks=2, got %d", course.DurationInWeeks)
	}
	step("created course %s with derived duration %d", course.ID, course.DurationInWeeks)

	if err := s.expectStatus(http.MethodGet, "/api/courses?limit=5&sortBy=price&sortOrder=desc&language=English", nil, http.StatusOK, nil); err != nil {
		log.Fatalf("list courses: %v", err)
	}
	step("listed courses with sort+filter")

	banner("reviews")
	for _, rating := range []int{5, 4} {
		reviewBody := map[string]any{"courseId": course.ID, "rating": rating, "review": "solid"}
		if err := s.doJSON(http.MethodPost, "/api/reviews", reviewBody, http.StatusCreated, nil); err != nil {
			log.Fatalf("create review: %v", err)
		}
	}
	step("created reviews (ratings 5, 4)")

	if err := s.expectStatus(http.MethodGet, "/api/courses/"+course.ID+"/reviews", nil, http.StatusOK, nil); err != nil {
		log.Fatalf("course with reviews: %v", err)
	}
	step("fetched course with reviews")

	banner("best course")
	// 第二门课平均分 5.0，应压过第一门的 4.5 成为最佳课程。
	rivalBody := map[string]any{
		"title":      fmt.Sprintf("E2E Rust Course %d", suffix),
		"instructor": "E2E Bot",
		"categoryId": category.ID,
		"price":      79.99,
		"startDate":  "2024-02-01",
		"endDate":    "2024-02-29",
		"language":   "English",
		"provider":   "E2E Provider",
		"tags":       []map[string]any{{"name": "rust", "isDeleted": false}},
		"details":    map[string]any{"level": "Advanced", "description": "smoke"},
	}
	var rival courseInfo
	if err := s.doJSON(http.MethodPost, "/api/course", rivalBody, http.StatusCreated, &rival); err != nil {
		log.Fatalf("create rival course: %v", err)
	}
	for i := 0; i < 2; i++ {
		reviewBody := map[string]any{"courseId": rival.ID, "rating": 5, "review": "perfect"}
		if err := s.doJSON(http.MethodPost, "/api/reviews", reviewBody, http.StatusCreated, nil); err != nil {
			log.Fatalf("create rival review: %v", err)
		}
	}
	var best struct {
		ID            string  `json:"_id"`
		AverageRating float64 `json:"averageRating"`
		ReviewCount   int     `json:"reviewCount"`
	}
	if err := s.doJSON(http.MethodGet, "/api/courses/best", nil, http.StatusOK, &best); err != nil {
		log.Fatalf("best course: %v", err)
	}
	if best.ID != rival.ID {
		log.Fatalf("best course: expected %s, got %s", rival.ID, best.ID)
	}
	if best.AverageRating != 5 || best.ReviewCount != 2 {
		log.Fatalf("best course: expected averageRating=5 reviewCount=2, got %.2f/%d", best.AverageRating, best.ReviewCount)
	}
	step("best course is the 5.0-rated one (%d reviews)", best.ReviewCount)

	banner("update")
	updateBody := map[string]any{
		"price": 59.99,
		"tags": []map[string]any{
			{"name": "go", "isDeleted": true},
			{"name": "backend", "isDeleted": false},
		},
		"details": map[string]any{"level": "Intermediate"},
	}
	var updated courseInfo
	if err := s.doJSON(http.MethodPut, "/api/courses/"+course.ID, updateBody, http.StatusOK, &updated); err != nil {
		log.Fatalf("update course: %v", err)
	}
	for _, tag := range updated.Tags {
		if tag.Name == "go" {
			log.Fatalf("tag %q should have been removed", tag.Name)
		}
	}
	step("updated course; tag set reconciled")

	// 重放同一份载荷必须幂等：已删除的标签再删、已存在的标签再加都不报错，
	// 标签集合保持不变。
	var replayed courseInfo
	if err := s.doJSON(http.MethodPut, "/api/courses/"+course.ID, updateBody, http.StatusOK, &replayed); err != nil {
		log.Fatalf("replay update: %v", err)
	}
	if len(replayed.Tags) != len(updated.Tags) {
		log.Fatalf("replayed update changed tag count: %d -> %d", len(updated.Tags), len(replayed.Tags))
	}
	hasBackend := false
	for _, tag := range replayed.Tags {
		if tag.Name == "go" {
			log.Fatalf("replayed update resurrected tag %q", tag.Name)
		}
		if tag.Name == "backend" {
			hasBackend = true
		}
	}
	if !hasBackend {
		log.Fatalf("replayed update dropped tag %q", "backend")
	}
	step("replaying the same tag payload is idempotent")

	banner("negative checks")
	// 直接提交派生字段必须被拒绝
	if err := s.doJSON(http.MethodPut, "/api/courses/"+course.ID, map[string]any{"durationInWeeks": 9}, http.StatusBadRequest, nil); err != nil {
		log.Fatalf("duration guard: %v", err)
	}
	step("direct durationInWeeks rejected")

	if err := s.doJSON(http.MethodPost, "/api/course", map[string]any{"price": 1}, http.StatusBadRequest, nil); err != nil {
		log.Fatalf("validation: %v", err)
	}
	step("invalid payload rejected")

	if err := s.expectStatus(http.MethodGet, "/api/nothing-here", nil, http.StatusNotFound, nil); err != nil {
		log.Fatalf("not found envelope: %v", err)
	}
	step("unknown route returns NotFound envelope")
}

// doJSON 发送 JSON 请求，校验状态码，并把信封中的 data 解码到 out。
func (s *scenario) doJSON(method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, baseURL.ResolveReference(&url.URL{Path: path}).String(), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: status %d (want %d): %s", method, path, resp.StatusCode, want, string(raw))
	}
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s %s: decode envelope: %w", method, path, err)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("%s %s: envelope has no data", method, path)
	}
	return json.Unmarshal(env.Data, out)
}

// expectStatus 发送请求并仅校验状态码。
func (s *scenario) expectStatus(method, rawPath string, body io.Reader, want int, headers http.Header) error {
	u, err := url.Parse(rawPath)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, baseURL.ResolveReference(u).String(), body)
	if err != nil {
		return err
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d (want %d): %s", method, rawPath, resp.StatusCode, want, string(raw))
	}
	if verbose {
		step("%s %s -> %d", method, rawPath, resp.StatusCode)
	}
	return nil
}
