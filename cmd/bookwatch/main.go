package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"
)

var (
	// 样式定义
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	bidStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")) // 绿色

	askStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")) // 红色

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

// bookLevel 一档带符号的价位
type bookLevel struct {
	price float64
	size  float64
}

// assetBook 一个资产的当前视图
type assetBook struct {
	id     string
	name   string
	levels []bookLevel
	err    string
}

// model 应用状态
type model struct {
	rc       *resty.Client
	assetIDs []string
	depth    int
	interval time.Duration

	books     []assetBook
	lastFetch time.Time
	fetchErr  string
	quitting  bool
}

// tickMsg 轮询定时消息
type tickMsg time.Time

// booksMsg 一轮拉取的结果
type booksMsg struct {
	books []assetBook
	err   string
}

func (m model) Init() tea.Cmd {
	return tea.Batch(fetchBooks(m.rc, m.assetIDs, m.depth), tick(m.interval))
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchBooks 拉取一轮订单簿和名称
func fetchBooks(rc *resty.Client, assetIDs []string, depth int) tea.Cmd {
	return func() tea.Msg {
		joined := strings.Join(assetIDs, ",")

		var names []*string
		if resp, err := rc.R().
			SetQueryParam("asset_ids", joined).
			Get("/get_names"); err == nil && !resp.IsError() {
			_ = json.Unmarshal(resp.Body(), &names)
		}

		resp, err := rc.R().
			SetQueryParams(map[string]string{
				"asset_ids": joined,
				"depth":     strconv.Itoa(depth),
			}).
			Get("/get_books")
		if err != nil {
			return booksMsg{err: err.Error()}
		}
		if resp.IsError() {
			return booksMsg{err: fmt.Sprintf("%s: %s", resp.Status(), strings.TrimSpace(string(resp.Body())))}
		}

		var raw []map[string]float64
		if err := json.Unmarshal(resp.Body(), &raw); err != nil {
			return booksMsg{err: err.Error()}
		}

		books := make([]assetBook, len(assetIDs))
		for i, id := range assetIDs {
			book := assetBook{id: id}
			if i < len(names) && names[i] != nil {
				book.name = *names[i]
			}
			if i >= len(raw) || raw[i] == nil {
				book.err = "拉取失败"
				books[i] = book
				continue
			}
			for priceStr, size := range raw[i] {
				price, err := strconv.ParseFloat(priceStr, 64)
				if err != nil {
					continue
				}
				book.levels = append(book.levels, bookLevel{price: price, size: size})
			}
			sort.Slice(book.levels, func(a, b int) bool { return book.levels[a].price > book.levels[b].price })
			books[i] = book
		}
		return booksMsg{books: books}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case tickMsg:
		return m, tea.Batch(fetchBooks(m.rc, m.assetIDs, m.depth), tick(m.interval))
	case booksMsg:
		if msg.err != "" {
			m.fetchErr = msg.err
		} else {
			m.fetchErr = ""
			m.books = msg.books
			m.lastFetch = time.Now()
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("订单簿监控"))
	if !m.lastFetch.IsZero() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  更新于 %s", m.lastFetch.Format("15:04:05"))))
	}
	b.WriteString("\n")
	if m.fetchErr != "" {
		b.WriteString(askStyle.Render("错误: "+m.fetchErr) + "\n")
	}

	for _, book := range m.books {
		title := book.id
		if book.name != "" {
			title = book.name
		}

		var body strings.Builder
		body.WriteString(titleStyle.Render(title) + "\n")
		if book.err != "" {
			body.WriteString(askStyle.Render(book.err))
		} else if len(book.levels) == 0 {
			body.WriteString(dimStyle.Render("<空>"))
		} else {
			for _, lv := range book.levels {
				line := fmt.Sprintf("%8.4f %12.2f", lv.price, lv.size)
				if lv.size < 0 {
					body.WriteString(askStyle.Render(line))
				} else {
					body.WriteString(bidStyle.Render(line))
				}
				body.WriteString("\n")
			}
		}
		b.WriteString(borderStyle.Render(body.String()) + "\n")
	}

	b.WriteString(dimStyle.Render("q 退出"))
	return b.String()
}

func main() {
	_ = godotenv.Load()

	defaultServer := os.Getenv("POLYSERVE_URL")
	if defaultServer == "" {
		defaultServer = "http://127.0.0.1:8080"
	}
	var (
		server   = flag.String("server", defaultServer, "网关地址")
		depth    = flag.Int("depth", 5, "每侧显示的档位数")
		interval = flag.Duration("interval", 2*time.Second, "轮询间隔")
	)
	flag.Parse()

	assetIDs := flag.Args()
	if len(assetIDs) == 0 {
		fmt.Fprintln(os.Stderr, "用法: bookwatch [-server URL] [-depth N] [-interval D] <asset_id>...")
		os.Exit(2)
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(*server, "/")).
		SetTimeout(10 * time.Second)

	m := model{
		rc:       rc,
		assetIDs: assetIDs,
		depth:    *depth,
		interval: *interval,
	}

	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
