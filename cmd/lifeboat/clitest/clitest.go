// Package clitest holds fixtures shared by the command tests: a small
// passenger CSV and a fake answer service.
package clitest

import (
	"net"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/lifeboat/pkg/llm"
)

// Dataset has 4 passengers: 3 survived, known ages 22 and 38.
const Dataset = `PassengerId,Survived,Pclass,Name,Sex,Age,SibSp,Parch,Ticket,Fare,Cabin,Embarked
1,1,3,"Braund, Mr. Owen Harris",male,22,1,0,A/5 21171,7.25,,S
2,0,1,"Cumings, Mrs. John Bradley (Florence Briggs Thayer)",female,,1,0,PC 17599,71.2833,C85,C
3,1,1,"Heikkinen, Miss. Laina",female,38,0,0,STON/O2. 3101282,7.925,,S
4,1,2,"Futrelle, Mr. Jacques Heath",male,NaN,1,0,113803,53.1,C123,S
`

// WriteDataset writes Dataset into dir and returns its path.
func WriteDataset(dir string) (string, error) {
	path := filepath.Join(dir, "passengers.csv")
	if err := os.WriteFile(path, []byte(Dataset), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// StartAnswerService serves a fake answer service that replies with answer
// to every query. It returns the /ask URL and a stop function.
func StartAnswerService(answer string) (string, func(), error) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post("/ask", func(c *fiber.Ctx) error {
		var req llm.AskRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
		}
		return c.JSON(llm.AskResponse{Answer: &answer})
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	go func() {
		_ = app.Listener(listener)
	}()

	return "http://" + listener.Addr().String() + "/ask", func() {
		_ = app.Shutdown()
	}, nil
}

// UnreachableURL returns an answer URL nothing listens on.
func UnreachableURL() (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	addr := listener.Addr().String()
	listener.Close()
	return "http://" + addr + "/ask", nil
}
