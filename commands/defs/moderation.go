package defs

import "github.com/bwmarrin/discordgo"

func defaultPerms(p int64) *int64 {
	return &p
}

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}
}

func reasonOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: description,
		Required:    required,
	}
}

var Warn = &discordgo.ApplicationCommand{
	Name:                     "warn",
	Description:              "Warn a member without punishment, recorded in the mod log",
	DefaultMemberPermissions: defaultPerms(discordgo.PermissionKickMembers),
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The member to warn"),
		reasonOption("The reason for the warning", true),
	},
}

var Mute = &discordgo.ApplicationCommand{
	Name:                     "mute",
	Description:              "Mute a member to prevent them from sending messages",
	DefaultMemberPermissions: defaultPerms(discordgo.PermissionManageRoles),
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The member to mute"),
		reasonOption("Duration and reason, e.g. \"1h15m spamming\" (duration optional)", false),
	},
}

var Unmute = &discordgo.ApplicationCommand{
	Name:                     "unmute",
	Description:              "Unmute a member to allow them to send messages again",
	DefaultMemberPermissions: defaultPerms(discordgo.PermissionManageRoles),
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The member to unmute"),
		reasonOption("The reason for the unmute", false),
	},
}

var Deafen = &discordgo.ApplicationCommand{
	Name:                     "deafen",
	Description:              "Deafen a member to prevent them from reading or sending messages",
	DefaultMemberPermissions: defaultPerms(discordgo.PermissionManageRoles),
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The member to deafen"),
		reasonOption("Duration and reason, e.g. \"1h15m spamming\" (duration optional)", false),
	},
}

var Undeafen = &discordgo.ApplicationCommand{
	Name:                     "undeafen",
	Description:              "Undeafen a member to allow them to read and send messages again",
	DefaultMemberPermissions: defaultPerms(discordgo.PermissionManageRoles),
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The member to undeafen"),
		reasonOption("The reason for the undeafen", false),
	},
}

var SelfDeafen = &discordgo.ApplicationCommand{
	Name:        "selfdeafen",
	Description: "Deafen yourself for a while, useful as a study tool",
	Options: []*discordgo.ApplicationCommandOption{
		reasonOption("Duration and reason, e.g. \"1h studying\" (duration required)", true),
	},
}

var SilentUndeafen = &discordgo.ApplicationCommand{
	Name:                     "silentundeafen",
	Description:              "Undeafen a member without posting to the mod log",
	DefaultMemberPermissions: defaultPerms(discordgo.PermissionManageRoles),
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The member to undeafen"),
		reasonOption("The reason for the undeafen", false),
	},
}

var Kick = &discordgo.ApplicationCommand{
	Name:                     "kick",
	Description:              "Kick a member from the server",
	DefaultMemberPermissions: defaultPerms(discordgo.PermissionKickMembers),
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The member to kick"),
		reasonOption("The reason for the kick", false),
	},
}

var Ban = &discordgo.ApplicationCommand{
	Name:                     "ban",
	Description:              "Ban a user from the server",
	DefaultMemberPermissions: defaultPerms(discordgo.PermissionBanMembers),
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The user to ban"),
		reasonOption("The reason for the ban", false),
	},
}

var Unban = &discordgo.ApplicationCommand{
	Name:                     "unban",
	Description:              "Unban a user from the server",
	DefaultMemberPermissions: defaultPerms(discordgo.PermissionBanMembers),
	Options: []*discordgo.ApplicationCommandOption{
		userOption("The user to unban"),
		reasonOption("The reason for the unban", false),
	},
}

var Punishments = &discordgo.ApplicationCommand{
	Name:                     "punishments",
	Description:              "List the active timed punishments in this server",
	DefaultMemberPermissions: defaultPerms(discordgo.PermissionManageRoles),
}

var BotInfo = &discordgo.ApplicationCommand{
	Name:        "botinfo",
	Description: "Show bot and host system information",
}
