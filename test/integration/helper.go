// Package integration 针对运行中的API服务的黑盒测试
//
// 先启动服务(go run ./cmd/api)，再执行 go test ./test/integration/...
// 地址通过LIBRARY_API_URL指定，服务不可达时整个包跳过。
// 管理员接口需要 LIBRARY_ADMIN_EMAIL / LIBRARY_ADMIN_PASSWORD（libctl admin create 创建）。
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	// DefaultBaseURL 未设置LIBRARY_API_URL时的地址
	DefaultBaseURL = "http://localhost:3000"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
	// TestPassword 测试用户统一密码
	TestPassword = "Test1234"
)

// BaseURL 服务地址
var BaseURL = DefaultBaseURL

var client = &http.Client{Timeout: Timeout}

// Result 响应状态码和原始body
type Result struct {
	Status int
	Body   []byte
}

// Decode 解析body到v
func (r *Result) Decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), "解析JSON响应失败: %s", string(r.Body))
}

// Message 错误响应中的message
func (r *Result) Message(t *testing.T) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	r.Decode(t, &body)
	return body.Message
}

// Do 发送请求，data为nil时不带body
func Do(t *testing.T, method, path string, data interface{}, token string) *Result {
	t.Helper()
	res, err := Send(method, path, data, token)
	require.NoError(t, err)
	return res
}

// Send 同Do，出错时返回error，供非测试goroutine使用
func Send(method, path string, data interface{}, token string) (*Result, error) {
	var body io.Reader
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("JSON序列化失败: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}
	return &Result{Status: resp.StatusCode, Body: raw}, nil
}

// BookData 图书响应
type BookData struct {
	ID              uint    `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	ISBN            *string `json:"isbn"`
	Copies          int     `json:"copies"`
	TotalCopies     int     `json:"total_copies"`
	AvailableCopies int     `json:"available_copies"`
	CheckedOut      int     `json:"checked_out"`
}

// UserData 用户资料
type UserData struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthData 注册/登录响应
type AuthData struct {
	Message string   `json:"message"`
	User    UserData `json:"user"`
	Token   string   `json:"token"`
}

// TransactionData 借阅记录
type TransactionData struct {
	ID         uint       `json:"id"`
	UserID     uint       `json:"user_id"`
	BookID     uint       `json:"book_id"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
	Overdue    bool       `json:"overdue"`
}

var seq atomic.Int64

// GenerateTestEmail 时间戳加序号保证重复运行不冲突
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d_%d@test.com", prefix, time.Now().UnixNano(), seq.Add(1))
}

// GenerateTestISBN 978 + 10位数字
func GenerateTestISBN() string {
	return fmt.Sprintf("978%010d", (time.Now().UnixNano()+seq.Add(1))%10000000000)
}

// RegisterTestUser 注册新用户，返回资料和Token
// 注册接口有限流，429时等待后重试
func RegisterTestUser(t *testing.T, prefix string) (UserData, string) {
	t.Helper()
	req := map[string]string{"email": GenerateTestEmail(prefix), "password": TestPassword}

	res := Do(t, http.MethodPost, "/users/register", req, "")
	for i := 0; i < 10 && res.Status == http.StatusTooManyRequests; i++ {
		time.Sleep(time.Second)
		res = Do(t, http.MethodPost, "/users/register", req, "")
	}
	require.Equal(t, http.StatusCreated, res.Status, "注册失败: %s", res.Body)

	var data AuthData
	res.Decode(t, &data)
	return data.User, data.Token
}

// AdminToken 使用预置管理员登录，未配置时跳过当前测试
func AdminToken(t *testing.T) string {
	t.Helper()
	email, password := os.Getenv("LIBRARY_ADMIN_EMAIL"), os.Getenv("LIBRARY_ADMIN_PASSWORD")
	if email == "" || password == "" {
		t.Skip("LIBRARY_ADMIN_EMAIL/LIBRARY_ADMIN_PASSWORD not set")
	}
	res := Do(t, http.MethodPost, "/users/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, res.Status, "管理员登录失败: %s", res.Body)

	var data AuthData
	res.Decode(t, &data)
	require.Equal(t, "admin", data.User.Role, "%s 不是管理员", email)
	return data.Token
}

// CreateTestBook 新增图书并返回
func CreateTestBook(t *testing.T, title string, copies int) BookData {
	t.Helper()
	res := Do(t, http.MethodPost, "/books", map[string]interface{}{
		"title":  title,
		"author": "测试作者",
		"isbn":   GenerateTestISBN(),
		"copies": copies,
	}, "")
	require.Equal(t, http.StatusCreated, res.Status, "新增图书失败: %s", res.Body)

	var b BookData
	res.Decode(t, &b)
	return b
}

// DeleteTestBook 清理测试图书
func DeleteTestBook(t *testing.T, id uint) {
	t.Helper()
	Do(t, http.MethodDelete, fmt.Sprintf("/books/%d", id), nil, "")
}
