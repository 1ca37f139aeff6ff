package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/scola/apps/api/echo"
	"github.com/trezcool/scola/core/message"
	"github.com/trezcool/scola/core/peerchat"
	"github.com/trezcool/scola/core/user"
	"github.com/trezcool/scola/tests"
)

func Test_messageApi(t *testing.T) {
	tickClock(t)
	app := setup(t)
	alice := testutil.CreateStudent(t, app.usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	teacher := testutil.CreateUser(t, app.usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)
	parent := testutil.CreateUser(t, app.usrRepo, "Mrs. Johnson", "parent@test.cd", "", user.RoleParent, true)
	aliceToken := app.token(t, alice)
	teacherToken := app.token(t, teacher)

	send := func(token, to, content string) message.Message {
		rec := app.do(http.MethodPost, "/v1/messages", token, marshallObj(t, message.NewMessage{RecipientID: to, Content: content}))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var msg message.Message
		unmarshall(t, rec, &msg)
		return msg
	}

	app.run(t, []httpTest{
		{name: "auth required", path: "/v1/messages", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "no conversation", path: "/v1/messages", token: aliceToken, wantData: marshallList(t)},
		{
			name: "blank content", method: http.MethodPost, path: "/v1/messages", token: aliceToken,
			body: marshallObj(t, message.NewMessage{RecipientID: teacher.ID, Content: "  "}), wantCode: http.StatusBadRequest,
		},
		{
			name: "content too long", method: http.MethodPost, path: "/v1/messages", token: aliceToken,
			body: marshallObj(t, message.NewMessage{RecipientID: teacher.ID, Content: strings.Repeat("a", 5001)}), wantCode: http.StatusBadRequest,
		},
		{
			name: "to self", method: http.MethodPost, path: "/v1/messages", token: aliceToken,
			body:     marshallObj(t, message.NewMessage{RecipientID: alice.ID, Content: "hi me"}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "you cannot send a message to yourself"}),
		},
		{
			name: "unknown recipient", method: http.MethodPost, path: "/v1/messages", token: aliceToken,
			body:     marshallObj(t, message.NewMessage{RecipientID: "lol", Content: "hello?"}),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "user not found"}),
		},
	})

	first := send(aliceToken, teacher.ID, " Hello Mr. Smith ")
	assert.Equal(t, "Hello Mr. Smith", first.Content)
	assert.Equal(t, "Mr. Smith", first.RecipientName)
	assert.False(t, first.Read)
	second := send(teacherToken, alice.ID, "Hi Alice")
	third := send(aliceToken, teacher.ID, "About the homework...")
	send(app.token(t, parent), teacher.ID, "Can we meet?")

	t.Run("conversations", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/messages", teacherToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var convs []message.Conversation
		unmarshall(t, rec, &convs)
		require.Len(t, convs, 2)
		assert.Equal(t, parent.ID, convs[0].PartnerID)
		assert.Equal(t, 1, convs[0].Unread)
		assert.Equal(t, alice.ID, convs[1].PartnerID)
		assert.Equal(t, "Alice Johnson", convs[1].PartnerName)
		assert.Equal(t, third.ID, convs[1].LastMessage.ID)
		assert.Equal(t, 2, convs[1].Unread)
	})

	app.run(t, []httpTest{
		{name: "teacher unread", path: "/v1/messages/unread", token: teacherToken, wantData: marshallObj(t, CountResponse{Count: 3})},
		{name: "alice unread", path: "/v1/messages/unread", token: aliceToken, wantData: marshallObj(t, CountResponse{Count: 1})},
		{name: "unknown partner thread", path: "/v1/messages/lol", token: aliceToken, wantData: marshallList(t)},
	})

	t.Run("thread", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/messages/"+teacher.ID, aliceToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var thread []message.Message
		unmarshall(t, rec, &thread)
		require.Len(t, thread, 3)
		assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{thread[0].ID, thread[1].ID, thread[2].ID})
	})

	app.run(t, []httpTest{
		{name: "mark read", method: http.MethodPost, path: "/v1/messages/" + alice.ID + "/read", token: teacherToken, wantData: marshallObj(t, CountResponse{Count: 2})},
		{name: "mark read again", method: http.MethodPost, path: "/v1/messages/" + alice.ID + "/read", token: teacherToken, wantData: marshallObj(t, CountResponse{Count: 0})},
		{name: "unread left", path: "/v1/messages/unread", token: teacherToken, wantData: marshallObj(t, CountResponse{Count: 1})},
	})
}

func Test_peerChatApi(t *testing.T) {
	tickClock(t)
	app := setup(t)
	alice := testutil.CreateStudent(t, app.usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	bob := testutil.CreateStudent(t, app.usrRepo, "Bob Smith", "bob@test.cd", "STU002", "Grade 10")
	teacher := testutil.CreateUser(t, app.usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)
	aliceToken := app.token(t, alice)
	groupPath := "/v1/chat/groups/math-group/messages"

	app.run(t, []httpTest{
		{
			name: "students only", path: "/v1/chat/groups", token: app.token(t, teacher),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "groups", path: "/v1/chat/groups", token: aliceToken, wantData: marshallObj(t, peerchat.Groups)},
		{
			name: "unknown group", path: "/v1/chat/groups/lol/messages", token: aliceToken,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "study group not found"}),
		},
		{
			name: "post: unknown group", method: http.MethodPost, path: "/v1/chat/groups/lol/messages", token: aliceToken,
			body:     marshallObj(t, peerchat.NewMessage{Content: "hi"}),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "study group not found"}),
		},
		{
			name: "post: blank", method: http.MethodPost, path: groupPath, token: aliceToken,
			body: marshallObj(t, peerchat.NewMessage{Content: " "}), wantCode: http.StatusBadRequest,
		},
		{
			name: "post: too long", method: http.MethodPost, path: groupPath, token: aliceToken,
			body: marshallObj(t, peerchat.NewMessage{Content: strings.Repeat("a", 2001)}), wantCode: http.StatusBadRequest,
		},
		{name: "no messages yet", path: groupPath, token: aliceToken, wantData: marshallList(t)},
	})

	for _, post := range []struct {
		token   string
		content string
	}{
		{aliceToken, "Who solved exercise 3?"},
		{app.token(t, bob), " Me! "},
	} {
		rec := app.do(http.MethodPost, groupPath, post.token, marshallObj(t, peerchat.NewMessage{Content: post.content}))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := app.do(http.MethodGet, groupPath, aliceToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []peerchat.Message
	unmarshall(t, rec, &msgs)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Alice Johnson", msgs[0].Sender)
	assert.Equal(t, "Bob Smith", msgs[1].Sender)
	assert.Equal(t, "Me!", msgs[1].Content)
	assert.Equal(t, "math-group", msgs[1].Group)

	app.run(t, []httpTest{{name: "other group untouched", path: "/v1/chat/groups/science-group/messages", token: aliceToken, wantData: marshallList(t)}})
}
