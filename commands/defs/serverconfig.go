package defs

import "github.com/bwmarrin/discordgo"

var ServerConfig = &discordgo.ApplicationCommand{
	Name:                     "serverconfig",
	Description:              "Display or change server-specific bot settings",
	DefaultMemberPermissions: defaultPerms(discordgo.PermissionManageServer),
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "show",
			Description: "Display server configuration information",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "modlog",
			Description: "Set the channel moderation actions are logged to",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "The channel to log moderation actions to",
					Required:    true,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildText,
					},
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "memberlog",
			Description: "Set the channel member joins and leaves are logged to",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "The channel to log member joins and leaves to",
					Required:    true,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildText,
					},
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "memberrole",
			Description: "Set the role given to full members",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "The member role",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "unset",
			Description: "Unset a server config setting",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "setting",
					Description: "The setting to remove",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "modlog", Value: "modlog"},
						{Name: "memberlog", Value: "memberlog"},
						{Name: "memberrole", Value: "memberrole"},
					},
				},
			},
		},
	},
}
