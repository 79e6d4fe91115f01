package repository

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/user/movieshelf/internal/model"
)

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"Inception": "Inception",
		"100%":      `100\%`,
		"a_b":       `a\_b`,
		`c\d`:       `c\\d`,
	}
	for in, want := range cases {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}

// ==================== 以下为数据库集成测试 ====================
// 需要 TEST_DATABASE_URL 指向可用的 PostgreSQL，未设置时跳过。

func testRepos(t *testing.T) *Repositories {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL 未设置，跳过数据库集成测试")
	}
	db, err := InitDB(dsn)
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	return NewRepositories(db)
}

// newTestUser 创建一次性测试用户并注册清理
func newTestUser(t *testing.T, repos *Repositories) *model.User {
	t.Helper()
	email := fmt.Sprintf("repo-test-%d@example.com", time.Now().UnixNano())
	user, err := repos.User.Create("测试用户", email, "password123")
	if err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	t.Cleanup(func() {
		repos.DB.Where("user_id = ?", user.ID).Delete(&model.Movie{})
		repos.DB.Delete(&model.User{}, user.ID)
	})
	return user
}

func addMovie(t *testing.T, repos *Repositories, userID int, title, director, year string) *model.Movie {
	t.Helper()
	m := &model.Movie{
		Title:    title,
		Type:     model.TypeMovie,
		Director: director,
		Year:     year,
		UserID:   userID,
	}
	if err := repos.Movie.Create(m); err != nil {
		t.Fatalf("创建影片失败: %v", err)
	}
	// 错开创建时间，保证按时间排序的断言稳定
	time.Sleep(5 * time.Millisecond)
	return m
}

func TestUserDuplicateEmail(t *testing.T) {
	repos := testRepos(t)
	user := newTestUser(t, repos)

	if _, err := repos.User.Create("另一个人", user.Email, "password456"); err == nil {
		t.Fatal("重复邮箱应触发唯一约束错误")
	}
}

func TestUserPasswordNeverPlaintext(t *testing.T) {
	repos := testRepos(t)
	user := newTestUser(t, repos)

	if user.PasswordHash == "password123" {
		t.Fatal("密码不得以明文存储")
	}
	if !repos.User.CheckPassword(user, "password123") {
		t.Fatal("正确密码应校验通过")
	}
	if repos.User.CheckPassword(user, "wrong") {
		t.Fatal("错误密码不应校验通过")
	}
}

func TestOwnershipMasking(t *testing.T) {
	repos := testRepos(t)
	owner := newTestUser(t, repos)
	other := newTestUser(t, repos)

	m := addMovie(t, repos, owner.ID, "Inception", "Nolan", "2010")

	// 他人视角：查不到、改不动、删不掉，且与不存在不可区分
	if rec, err := repos.Movie.GetByOwner(other.ID, m.ID); err != nil || rec != nil {
		t.Fatalf("越权查询应表现为不存在: rec=%v err=%v", rec, err)
	}
	if rec, err := repos.Movie.GetByOwner(owner.ID, m.ID+999999); err != nil || rec != nil {
		t.Fatalf("不存在的记录: rec=%v err=%v", rec, err)
	}

	if err := repos.Movie.UpdateByOwner(other.ID, m.ID, map[string]interface{}{"title": "Hacked"}); err != nil {
		t.Fatalf("越权更新不应报错: %v", err)
	}
	kept, _ := repos.Movie.GetByOwner(owner.ID, m.ID)
	if kept == nil || kept.Title != "Inception" {
		t.Fatal("越权更新不得产生任何变更")
	}

	deleted, err := repos.Movie.DeleteByOwner(other.ID, m.ID)
	if err != nil || deleted {
		t.Fatalf("越权删除应报告未删除: deleted=%v err=%v", deleted, err)
	}
	if rec, _ := repos.Movie.GetByOwner(owner.ID, m.ID); rec == nil {
		t.Fatal("记录不应被他人删除")
	}
}

func TestListPaginationAndSearch(t *testing.T) {
	repos := testRepos(t)
	user := newTestUser(t, repos)
	other := newTestUser(t, repos)

	addMovie(t, repos, user.ID, "Inception", "Nolan", "2010")
	addMovie(t, repos, user.ID, "Interstellar", "Nolan", "2014")
	addMovie(t, repos, user.ID, "Heat", "Mann", "1995")
	addMovie(t, repos, other.ID, "Inception Copy", "Someone", "2011")

	// 总数只统计本人记录，不受分页影响
	page1, total, err := repos.Movie.ListByOwner(user.ID, "", 2, 0)
	if err != nil {
		t.Fatalf("列表查询失败: %v", err)
	}
	if total != 3 {
		t.Fatalf("总数应为 3，实际 %d", total)
	}
	if len(page1) != 2 {
		t.Fatalf("第一页应有 2 条，实际 %d", len(page1))
	}

	// 按创建时间倒序，最新在前
	if page1[0].Title != "Heat" {
		t.Errorf("排序应为最新在前，第一条: %s", page1[0].Title)
	}

	page2, _, err := repos.Movie.ListByOwner(user.ID, "", 2, 2)
	if err != nil {
		t.Fatalf("第二页查询失败: %v", err)
	}
	if len(page2) != 1 {
		t.Fatalf("第二页应有 1 条，实际 %d", len(page2))
	}

	// 前缀搜索："Inc" 只命中 Inception，"In" 两者都命中
	inc, total, err := repos.Movie.ListByOwner(user.ID, "Inc", 20, 0)
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if total != 1 || len(inc) != 1 || inc[0].Title != "Inception" {
		t.Fatalf("搜索 Inc 应只命中 Inception: total=%d %v", total, inc)
	}

	_, total, err = repos.Movie.ListByOwner(user.ID, "In", 20, 0)
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if total != 2 {
		t.Fatalf("搜索 In 应命中 2 条，实际 %d", total)
	}

	// 大小写不敏感
	_, total, err = repos.Movie.ListByOwner(user.ID, "inc", 20, 0)
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if total != 1 {
		t.Fatalf("搜索应大小写不敏感，实际命中 %d", total)
	}

	// 导演/类型/年份任一前缀命中即可
	_, total, err = repos.Movie.ListByOwner(user.ID, "Nol", 20, 0)
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if total != 2 {
		t.Fatalf("按导演前缀应命中 2 条，实际 %d", total)
	}

	// 通配符按字面处理
	_, total, err = repos.Movie.ListByOwner(user.ID, "%", 20, 0)
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if total != 0 {
		t.Fatalf("字面 %% 不应命中任何记录，实际 %d", total)
	}
}

func TestUpdatePreservesPoster(t *testing.T) {
	repos := testRepos(t)
	user := newTestUser(t, repos)

	m := addMovie(t, repos, user.ID, "Inception", "Nolan", "2010")

	poster := "https://storage.googleapis.com/b/poster-1-2.png"
	if err := repos.Movie.UpdateByOwner(user.ID, m.ID, map[string]interface{}{"poster": poster}); err != nil {
		t.Fatalf("设置海报失败: %v", err)
	}

	// 不含 poster 的部分更新必须保留原值
	if err := repos.Movie.UpdateByOwner(user.ID, m.ID, map[string]interface{}{"title": "Inception (2010)"}); err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	got, err := repos.Movie.GetByOwner(user.ID, m.ID)
	if err != nil || got == nil {
		t.Fatalf("查询失败: %v", err)
	}
	if got.Title != "Inception (2010)" {
		t.Errorf("标题未更新: %q", got.Title)
	}
	if got.Poster == nil || *got.Poster != poster {
		t.Errorf("海报应保持不变: %v", got.Poster)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Error("更新时间应晚于创建时间")
	}
}

func TestDeleteByOwner(t *testing.T) {
	repos := testRepos(t)
	user := newTestUser(t, repos)

	m := addMovie(t, repos, user.ID, "Heat", "Mann", "1995")

	deleted, err := repos.Movie.DeleteByOwner(user.ID, m.ID)
	if err != nil || !deleted {
		t.Fatalf("删除失败: deleted=%v err=%v", deleted, err)
	}

	if rec, _ := repos.Movie.GetByOwner(user.ID, m.ID); rec != nil {
		t.Fatal("删除后不应再查到记录")
	}

	// 重复删除报告未删除
	deleted, err = repos.Movie.DeleteByOwner(user.ID, m.ID)
	if err != nil || deleted {
		t.Fatalf("重复删除应报告未删除: deleted=%v err=%v", deleted, err)
	}
}
