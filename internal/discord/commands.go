package discord

import "github.com/bwmarrin/discordgo"

const (
	CommandMeetings = "meetings"
	CommandRegister = "register"
	CommandWorkday  = "workday"

	OptionDate       = "date"
	OptionEmployeeID = "employee_id"
)

// Commands returns the guild slash commands
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandMeetings,
			Description: "查詢你當天的會議",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptionDate,
					Description: "日期，例如 2025-10-14、10-14、tomorrow（預設今天）",
					Required:    false,
				},
			},
		},
		{
			Name:        CommandRegister,
			Description: "將你的 Discord 帳號綁定員工編號",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptionEmployeeID,
					Description: "員工編號",
					Required:    true,
				},
			},
		},
		{
			Name:        CommandWorkday,
			Description: "查詢本月最後一個工作日",
		},
	}
}
